//go:build integration

package integration_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/dwd-climate-etl/internal/adapter/dwd"
	"github.com/couchcryptid/dwd-climate-etl/internal/adapter/kafka"
	"github.com/couchcryptid/dwd-climate-etl/internal/config"
	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
	"github.com/couchcryptid/dwd-climate-etl/internal/observability"
	"github.com/couchcryptid/dwd-climate-etl/internal/pipeline"
)

const testTopic = "dwd-points"

const precipText = "STATIONS_ID;MESS_DATUM;  QN;RWS_DAU_10;RWS_10;RWS_IND_10;eor\n" +
	"         91;202401011200;    3;   10;   0,10;   1;eor\n" +
	"         91;202401011210;    3;   10;   0,20;   1;eor\n"

const tempText = "STATIONS_ID;MESS_DATUM;  QN;PP_10;TT_10;TM5_10;RF_10;TD_10;eor\n" +
	"         91;202401011200;    3; 1000,1;  5,2;  3,1;  80,0;  2,0;eor\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("dwd-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cconn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cconn.Close()

	require.NoError(t, cconn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	}))
}

func zipOf(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = io.WriteString(w, content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// fakeDWD serves the "now" archives for station 00091.
func fakeDWD(t *testing.T) *httptest.Server {
	t.Helper()
	files := map[string][]byte{
		"/10_minutes/precipitation/now/10minutenwerte_nieder_00091_now.zip": zipOf(t, "produkt_zehn_now_rr_00091.txt", precipText),
		"/10_minutes/air_temperature/now/10minutenwerte_TU_00091_now.zip":   zipOf(t, "produkt_zehn_now_tu_00091.txt", tempText),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestTrackingRunToKafka runs the tracking mode against a fake DWD server and
// reads the published points back from Kafka.
func TestTrackingRunToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaTopic:         testTopic,
		BatchSize:          50,
		BatchFlushInterval: 100 * time.Millisecond,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	roster := domain.Roster{{ID: "00091", Name: "Alsfeld-Eifa"}}
	p := pipeline.New(
		dwd.NewClient(5*time.Second, discardLogger()),
		writer,
		domain.NewSelector(fakeDWD(t).URL),
		roster,
		discardLogger(),
		observability.NewMetricsForTesting(),
	)

	report, err := p.Run(ctx, domain.ModeTracking)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalPoints())

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{broker},
		Topic:   testTopic,
		GroupID: "dwd-test-" + strconv.FormatInt(time.Now().UnixNano(), 10),
		MaxWait: 500 * time.Millisecond,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := make(map[string]domain.Point)
	for len(got) < 3 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from topic")

		var pt domain.Point
		require.NoError(t, json.Unmarshal(msg.Value, &pt))
		assert.Equal(t, pt.Key(), string(msg.Key))
		got[string(msg.Key)] = pt
	}

	temp := got["temp_10min,station_id=00091,station_name=Alsfeld-Eifa 1704110400"]
	assert.Equal(t, map[string]float64{"temperature_10min": 5.2, "humidity_10min": 80}, temp.Fields)
	precip := got["precip_10min,station_id=00091,station_name=Alsfeld-Eifa 1704111000"]
	assert.Equal(t, map[string]float64{"precip_10min": 0.2}, precip.Fields)
}
