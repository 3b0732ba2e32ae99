package config

import (
	"github.com/mailsweep/mailsweep/internal/logger"
	"github.com/mailsweep/mailsweep/internal/tracing"
)

type AppConfig struct {
	APIPort     string `env:"PORT" envDefault:"11000"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	Logger      *logger.Config
	Tracing     *tracing.JaegerConfig
}

type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	TokenURL     string `env:"GOOGLE_TOKEN_URL" envDefault:"https://oauth2.googleapis.com/token"`
	GmailAPIURL  string `env:"GMAIL_API_URL" envDefault:"https://gmail.googleapis.com/gmail/v1"`
}

type DatabaseConfig struct {
	Host            string `env:"MAILSWEEP_POSTGRES_HOST,required"`
	Port            string `env:"MAILSWEEP_POSTGRES_PORT,required"`
	User            string `env:"MAILSWEEP_POSTGRES_USER,required"`
	DBName          string `env:"MAILSWEEP_POSTGRES_DB_NAME,required"`
	Password        string `env:"MAILSWEEP_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"MAILSWEEP_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"MAILSWEEP_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"MAILSWEEP_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"MAILSWEEP_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"MAILSWEEP_POSTGRES_SSL_MODE" envDefault:"disable"`
}
