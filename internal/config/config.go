package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
)

// Sink names.
const (
	SinkInflux = "influxdb"
	SinkKafka  = "kafka"
)

// Config holds all loader settings. Values come from the YAML file and are
// overridden by environment variables where set.
type Config struct {
	Stations domain.Roster
	Sink     string

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	KafkaBrokers       []string
	KafkaTopic         string
	BatchSize          int
	BatchFlushInterval time.Duration

	BaseURL        string
	HTTPTimeout    time.Duration
	WriteBatchSize int

	LogLevel        string
	LogFormat       string
	MetricsAddr     string
	PushgatewayURL  string
	ShutdownTimeout time.Duration
}

// file mirrors the YAML layout:
//
//	influxdb:
//	  url: "http://localhost:8086"
//	  token: "my-token"
//	  org: "my-org"
//	  bucket: "dwd"
//	stations:
//	  - "00091"
//	  - id: "13965"
//	    name: "Offenbach"
type file struct {
	Sink     string `yaml:"sink"`
	InfluxDB struct {
		URL    string `yaml:"url"`
		Token  string `yaml:"token"`
		Org    string `yaml:"org"`
		Bucket string `yaml:"bucket"`
	} `yaml:"influxdb"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Source struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"source"`
	Stations stationList `yaml:"stations"`
}

// Load reads the YAML file at path, applies environment overrides, and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	var f file
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("HTTP_TIMEOUT", orDefault(f.Source.Timeout, "10s")))
	if err != nil || timeout <= 0 {
		return nil, errors.New("invalid HTTP_TIMEOUT")
	}

	writeBatch, err := strconv.Atoi(sharedcfg.EnvOrDefault("WRITE_BATCH_SIZE", "5000"))
	if err != nil || writeBatch <= 0 {
		return nil, errors.New("invalid WRITE_BATCH_SIZE")
	}

	brokers := strings.Join(f.Kafka.Brokers, ",")

	cfg := &Config{
		Stations: domain.Roster(f.Stations),
		Sink:     strings.ToLower(sharedcfg.EnvOrDefault("SINK", orDefault(f.Sink, SinkInflux))),

		InfluxURL:    sharedcfg.EnvOrDefault("INFLUXDB_URL", orDefault(f.InfluxDB.URL, "http://localhost:8086")),
		InfluxToken:  sharedcfg.EnvOrDefault("INFLUXDB_TOKEN", f.InfluxDB.Token),
		InfluxOrg:    sharedcfg.EnvOrDefault("INFLUXDB_ORG", f.InfluxDB.Org),
		InfluxBucket: sharedcfg.EnvOrDefault("INFLUXDB_BUCKET", f.InfluxDB.Bucket),

		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", orDefault(brokers, "localhost:9092"))),
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", orDefault(f.Kafka.Topic, "dwd-climate-points")),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		BaseURL:        sharedcfg.EnvOrDefault("DWD_BASE_URL", orDefault(f.Source.BaseURL, domain.DefaultBaseURL)),
		HTTPTimeout:    timeout,
		WriteBatchSize: writeBatch,

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),
		ShutdownTimeout: shutdownTimeout,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Stations) == 0 {
		return errors.New("stations: at least one station is required")
	}
	switch c.Sink {
	case SinkInflux:
		if c.InfluxURL == "" {
			return errors.New("INFLUXDB_URL is required")
		}
		if c.InfluxOrg == "" {
			return errors.New("INFLUXDB_ORG is required")
		}
		if c.InfluxBucket == "" {
			return errors.New("INFLUXDB_BUCKET is required")
		}
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaTopic == "" {
			return errors.New("KAFKA_TOPIC is required")
		}
	default:
		return fmt.Errorf("invalid SINK %q (allowed: %s, %s)", c.Sink, SinkInflux, SinkKafka)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// stationList accepts either a list of station ids or a list of {id, name}
// mappings. Ids are normalized to the five-digit form.
type stationList domain.Roster

func (l *stationList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("stations: line %d: expected a list of ids or {id, name} entries", n.Line)
	}

	var roster domain.Roster
	seen := make(map[domain.StationID]bool, len(n.Content))
	var kind yaml.Kind
	for _, item := range n.Content {
		if kind != 0 && item.Kind != kind {
			return fmt.Errorf("stations: line %d: cannot mix plain ids and {id, name} entries", item.Line)
		}
		kind = item.Kind

		var st domain.Station
		switch item.Kind {
		case yaml.ScalarNode:
			st.ID = domain.NormalizeStationID(item.Value)
		case yaml.MappingNode:
			var entry struct {
				ID   string `yaml:"id"`
				Name string `yaml:"name"`
			}
			if err := item.Decode(&entry); err != nil {
				return fmt.Errorf("stations: line %d: %w", item.Line, err)
			}
			st.ID = domain.NormalizeStationID(entry.ID)
			st.Name = strings.TrimSpace(entry.Name)
		default:
			return fmt.Errorf("stations: line %d: expected an id or {id, name} entry", item.Line)
		}

		if st.ID == "" {
			return fmt.Errorf("stations: line %d: station id is empty", item.Line)
		}
		if seen[st.ID] {
			return fmt.Errorf("stations: line %d: duplicate station %s", item.Line, st.ID)
		}
		seen[st.ID] = true
		roster = append(roster, st)
	}

	*l = stationList(roster)
	return nil
}
