package influx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dwd-climate-etl/internal/config"
	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
)

type writeRequest struct {
	query writeQuery
	body  string
}

type writeQuery struct {
	org, bucket, precision string
}

type fakeInflux struct {
	mu       sync.Mutex
	requests []writeRequest
	status   int
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping":
		w.WriteHeader(http.StatusNoContent)
		return
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, writeRequest{
			query: writeQuery{
				org:       r.URL.Query().Get("org"),
				bucket:    r.URL.Query().Get("bucket"),
				precision: r.URL.Query().Get("precision"),
			},
			body: string(body),
		})
		f.mu.Unlock()
		if f.status != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"code":"internal error","message":"boom"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestWriter(t *testing.T, fake *fakeInflux, batchSize int) *Writer {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		InfluxURL:      srv.URL,
		InfluxToken:    "token",
		InfluxOrg:      "dwd",
		InfluxBucket:   "climate",
		HTTPTimeout:    5 * time.Second,
		WriteBatchSize: batchSize,
	}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func testPoints(n int) []domain.Point {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	points := make([]domain.Point, n)
	for i := range points {
		points[i] = domain.Point{
			Measurement: "precip_10min",
			Tags:        []domain.Tag{{Key: "station_id", Value: "00091"}, {Key: "station_name", Value: "Alsfeld-Eifa"}},
			Time:        ts.Add(time.Duration(i) * 10 * time.Minute),
			Fields:      map[string]float64{"precip_10min": 0.5},
		}
	}
	return points
}

func TestWriter_LoadBatch(t *testing.T) {
	fake := &fakeInflux{}
	w := newTestWriter(t, fake, 100)

	require.NoError(t, w.LoadBatch(context.Background(), testPoints(2)))

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, writeQuery{org: "dwd", bucket: "climate", precision: "s"}, req.query)

	lines := strings.Split(strings.TrimSpace(req.body), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "precip_10min,station_id=00091,station_name=Alsfeld-Eifa precip_10min=0.5"), lines[0])
	assert.True(t, strings.HasSuffix(lines[0], " 1704110400"), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], " 1704111000"), lines[1])
}

func TestWriter_LoadBatch_Chunks(t *testing.T) {
	fake := &fakeInflux{}
	w := newTestWriter(t, fake, 2)

	require.NoError(t, w.LoadBatch(context.Background(), testPoints(5)))
	assert.Len(t, fake.requests, 3)
}

func TestWriter_LoadBatch_ServerError(t *testing.T) {
	fake := &fakeInflux{status: http.StatusInternalServerError}
	w := newTestWriter(t, fake, 100)

	err := w.LoadBatch(context.Background(), testPoints(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "influx write")
}

func TestWriter_LoadBatch_Empty(t *testing.T) {
	fake := &fakeInflux{}
	w := newTestWriter(t, fake, 100)

	require.NoError(t, w.LoadBatch(context.Background(), nil))
	assert.Empty(t, fake.requests)
}

func TestWriter_CheckReadiness(t *testing.T) {
	w := newTestWriter(t, &fakeInflux{}, 100)
	assert.NoError(t, w.CheckReadiness(context.Background()))
}

func TestToInflux(t *testing.T) {
	p := toInflux(testPoints(1)[0])
	assert.Equal(t, "precip_10min", p.Name())
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), p.Time())
	require.Len(t, p.TagList(), 2)
	assert.Equal(t, "station_id", p.TagList()[0].Key)
	require.Len(t, p.FieldList(), 1)
	assert.Equal(t, 0.5, p.FieldList()[0].Value)
}
