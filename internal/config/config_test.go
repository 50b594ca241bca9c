package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Zero(t, cfg.AuditInterval)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("DB_DSN_PRIMARY", "root:pw@tcp(127.0.0.1:3306)/meds?parseTime=true")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("PORT", "9090")
	t.Setenv("AUDIT_INTERVAL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Hour, cfg.AuditInterval)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing secret", Config{StoreDriver: DriverMemory}, true},
		{"mysql without dsn", Config{JWTSecret: "s", StoreDriver: DriverMySQL}, true},
		{"unknown driver", Config{JWTSecret: "s", StoreDriver: "mongo"}, true},
		{"memory ok", Config{JWTSecret: "s", StoreDriver: DriverMemory}, false},
		{"mysql ok", Config{JWTSecret: "s", StoreDriver: DriverMySQL, DSN: "dsn"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
