package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App        AppSettings        `mapstructure:"app"`
	Redis      RedisSettings      `mapstructure:"redis"`
	Revocation RevocationSettings `mapstructure:"revocation"`
	Telemetry  TelemetrySettings  `mapstructure:"telemetry"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// RedisSettings configures the optional Redis backend. An empty URL means no
// backend is configured and the in-memory fallback is selected.
type RedisSettings struct {
	URL             string        `mapstructure:"url"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	MaxRetries      int           `mapstructure:"max_retries"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RevocationSettings tunes check behaviour when the selected backend errors.
type RevocationSettings struct {
	FallbackPolicy string `mapstructure:"fallback_policy"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("REVOCATION")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"redis.key_prefix",
		"redis.pool_size",
		"redis.min_idle_conns",
		"redis.max_retries",
		"redis.dial_timeout",
		"redis.read_timeout",
		"redis.write_timeout",
		"redis.conn_max_idle_time",
		"revocation.fallback_policy",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
	}); err != nil {
		return nil, err
	}

	// The plain REDIS_URL form is the conventional setting name for the
	// backend; the prefixed form wins when both are set.
	if err := v.BindEnv("redis.url", "REVOCATION_REDIS_URL", "REDIS_URL"); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "token-revocation")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.key_prefix", "blacklist")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.conn_max_idle_time", "5m")

	v.SetDefault("revocation.fallback_policy", "fail_closed")

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "token-revocation")
	v.SetDefault("telemetry.sampling_rate", 1.0)
}
