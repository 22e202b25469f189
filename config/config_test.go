package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeDerivation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want Mode
	}{
		{
			name: "nothing configured means demo",
			want: ModeDemo,
		},
		{
			name: "direct dsn selects postgres",
			cfg:  Config{Database: DatabaseConfig{DSN: "postgres://agenda:secret@db:5432/agenda"}},
			want: ModePostgres,
		},
		{
			name: "host parts select postgres too",
			cfg: Config{Database: DatabaseConfig{
				Host: "db", Port: 5432, User: "agenda", Password: "secret", Name: "agenda", SSLMode: "require",
			}},
			want: ModePostgres,
		},
		{
			name: "rest surface needs url and key",
			cfg: Config{Backend: BackendConfig{
				URL: "https://project.example.co", AnonKey: "anon-key",
			}},
			want: ModePostgrest,
		},
		{
			name: "rest url without key stays demo",
			cfg:  Config{Backend: BackendConfig{URL: "https://project.example.co"}},
			want: ModeDemo,
		},
		{
			name: "database wins over rest surface",
			cfg: Config{
				Database: DatabaseConfig{DSN: "postgres://agenda:secret@db:5432/agenda"},
				Backend:  BackendConfig{URL: "https://project.example.co", AnonKey: "anon-key"},
			},
			want: ModePostgres,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Mode())
		})
	}
}

func TestConnStringFromParts(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "agenda", Password: "secret", Name: "agenda", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=agenda password=secret dbname=agenda sslmode=disable",
		cfg.ConnString())

	whole := DatabaseConfig{DSN: "postgres://somewhere/else", Host: "ignored"}
	assert.Equal(t, "postgres://somewhere/else", whole.ConnString(), "a whole DSN wins over parts")
}

func TestEnvOverridesBeatFileValues(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://agenda:secret@db:5432/agenda")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("LOG_LEVEL", "debug")

	var cfg Config
	applyEnvOverrides(&cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ModePostgres, cfg.Mode())
	assert.Equal(t, "kafka", cfg.Messaging.Driver)
	assert.Equal(t, "kafka-1:9092,kafka-2:9092", cfg.Messaging.KafkaBrokers)
	assert.Equal(t, "debug", cfg.LogLevel)
}
