package config

import (
	"bytes"
	_ "embed"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

//go:embed base.yaml
var baseConfig []byte

type AppConfig struct {
	Name     string `mapstructure:"name" validate:"required"`
	Version  string `mapstructure:"version"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type GRPCConfig struct {
	Addr             string `mapstructure:"addr" validate:"required"`
	EnableReflection bool   `mapstructure:"enable_reflection"`
}

type PostgresConfig struct {
	DSN             string `mapstructure:"dsn" validate:"required"`
	MaxConns        int32  `mapstructure:"max_conns" validate:"gte=0"`
	MinConns        int32  `mapstructure:"min_conns" validate:"gte=0"`
	ConnectAttempts int    `mapstructure:"connect_attempts" validate:"gte=1"`
	Migrate         bool   `mapstructure:"migrate"`
}

type PaymentConfig struct {
	Provider        string        `mapstructure:"provider" validate:"oneof=mock stripe"`
	StripeSecretKey string        `mapstructure:"stripe_secret_key" validate:"required_if=Provider stripe"`
	Currency        string        `mapstructure:"currency" validate:"required,len=3"`
	FeePercent      float64       `mapstructure:"fee_percent" validate:"gte=0,lte=100"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UIURL           string        `mapstructure:"ui_url" validate:"required,url"`
}

type NotifierConfig struct {
	Driver      string        `mapstructure:"driver" validate:"oneof=log nats amqp"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	NATSURL     string        `mapstructure:"nats_url" validate:"required_if=Driver nats"`
	NATSSubject string        `mapstructure:"nats_subject" validate:"required_if=Driver nats"`
	AMQPURL     string        `mapstructure:"amqp_url" validate:"required_if=Driver amqp"`
	AMQPQueue   string        `mapstructure:"amqp_queue" validate:"required_if=Driver amqp"`
}

type OpenTelemetryLogConfig struct {
	TimeoutInSec  int64 `mapstructure:"timeout"`
	IntervalInSec int64 `mapstructure:"interval"`
	MaxQueueSize  int   `mapstructure:"maxqueuesize"`
	BatchSize     int   `mapstructure:"batchsize"`
}

type OpenTelemetryTraceConfig struct {
	TimeoutInSec int64 `mapstructure:"timeout"`
	MaxQueueSize int   `mapstructure:"maxqueuesize"`
	BatchSize    int   `mapstructure:"batchsize"`
	SampleRate   int   `mapstructure:"samplerate" validate:"gte=0,lte=100"`
}

type OpenTelemetryMetricConfig struct {
	IntervalInSec int64 `mapstructure:"interval"`
	TimeoutInSec  int64 `mapstructure:"timeout"`
}

type OpenTelemetryConfig struct {
	Enabled  bool                      `mapstructure:"enabled"`
	Endpoint string                    `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Metrics  OpenTelemetryMetricConfig `mapstructure:"metrics"`
	Traces   OpenTelemetryTraceConfig  `mapstructure:"traces"`
	Logs     OpenTelemetryLogConfig    `mapstructure:"logs"`
}

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	GRPC          GRPCConfig          `mapstructure:"grpc"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Payment       PaymentConfig       `mapstructure:"payment"`
	Notifier      NotifierConfig      `mapstructure:"notifier"`
	OpenTelemetry OpenTelemetryConfig `mapstructure:"opentelemetry"`
}

// Load reads .env if present, then the embedded defaults overridden by
// environment variables named after the key path (postgres.dsn is
// POSTGRES_DSN).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(baseConfig)
}

func load(base []byte) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(base)); err != nil {
		return nil, err
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
