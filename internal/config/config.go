package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database

	Auth    Auth    `envPrefix:"JWT_"`
	Redis   Redis   `envPrefix:"REDIS_"`
	Kafka   Kafka   `envPrefix:"KAFKA_"`
	AWS     AWS     `envPrefix:"AWS_"`
	SMTP    SMTP    `envPrefix:"SMTP_"`
	Receipt Receipt `envPrefix:"RECEIPT_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host           string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port           string        `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"15s"`
	RateLimit      float64       `env:"HTTP_RATE_LIMIT" envDefault:"20"`
	RateBurst      int           `env:"HTTP_RATE_BURST" envDefault:"40"`
}

func (h HTTPServer) Address() string {
	return h.Host + ":" + h.Port
}

type Database struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"sqlite"`
	URL             string        `env:"DATABASE_URL" envDefault:"storefront.db?_busy_timeout=5000&_txlock=immediate&_foreign_keys=1"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"50"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
}

type Auth struct {
	Key      string        `env:"KEY,required,notEmpty"`
	Issuer   string        `env:"ISSUER" envDefault:"storefront-api"`
	Audience string        `env:"AUDIENCE" envDefault:"storefront-clients"`
	TTL      time.Duration `env:"TTL" envDefault:"24h"`
}

// Redis is optional; an empty Addr disables checkout idempotency and receipt locks.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// Kafka is optional; without brokers receipts are generated in-process.
type Kafka struct {
	Brokers    []string `env:"BROKERS" envSeparator:","`
	OrderTopic string   `env:"ORDER_TOPIC" envDefault:"order.completed"`
	GroupID    string   `env:"GROUP_ID" envDefault:"receipt-worker"`
}

func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

type AWS struct {
	Region     string        `env:"REGION" envDefault:"eu-west-1"`
	BucketName string        `env:"BUCKET_NAME"`
	AccessKey  string        `env:"ACCESS_KEY"`
	SecretKey  string        `env:"SECRET_KEY"`
	Endpoint   string        `env:"ENDPOINT"`
	PresignTTL time.Duration `env:"PRESIGN_TTL" envDefault:"1h"`
}

type SMTP struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"465"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
	FromName string `env:"FROM_NAME" envDefault:"Storefront"`
}

type Receipt struct {
	Workers   int `env:"WORKERS" envDefault:"5"`
	QueueSize int `env:"QUEUE_SIZE" envDefault:"256"`
}
