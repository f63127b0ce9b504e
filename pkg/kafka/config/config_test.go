package kafka_config

import (
	"strings"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "k1:9092, k2:9092")
	t.Setenv(EnvKafkaProducerCompression, "ZSTD")

	cfg := FromEnv()

	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "k2:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ProducerCompression != "zstd" {
		t.Errorf("ProducerCompression = %s", cfg.ProducerCompression)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := FromEnv()
	cfg.Brokers = []string{""}
	cfg.ProducerRequireAcks = 2
	cfg.ProducerCompression = "brotli"

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"Broker 0", "ProducerRequireAcks", "ProducerCompression"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}
