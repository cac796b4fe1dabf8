package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Credentials never get a default: they must come from the environment or .env.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Comma list of origins allowed to call the API; "*" allows any.
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Ticket store
	StoreDriver        string `mapstructure:"STORE_DRIVER"` // firebase | postgres
	FirebaseURL        string `mapstructure:"FIREBASE_URL"`
	FirebaseCollection string `mapstructure:"FIREBASE_COLLECTION"`
	FirebaseAuth       string `mapstructure:"FIREBASE_AUTH"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`

	// Product catalog
	CatalogoURL string `mapstructure:"CATALOGO_URL"`

	// Redis (optional: empty disables shared catalog cache and dead-letter list)
	RedisURL string `mapstructure:"REDIS_URL"`

	// Apps Script → Google Sheets
	SheetsEndpoint string `mapstructure:"SHEETS_ENDPOINT"`

	// Mail
	MailTransport    string   `mapstructure:"MAIL_TRANSPORT"` // mailup | smtp
	MailUpEndpoint   string   `mapstructure:"MAILUP_ENDPOINT"`
	MailUpAPIKey     string   `mapstructure:"MAILUP_API_KEY"`
	MailUpUsername   string   `mapstructure:"MAILUP_USERNAME"`
	MailUpSecret     string   `mapstructure:"MAILUP_SECRET"`
	MailFromName     string   `mapstructure:"MAIL_FROM_NAME"`
	MailFromEmail    string   `mapstructure:"MAIL_FROM_EMAIL"`
	MailCampaignName string   `mapstructure:"MAIL_CAMPAIGN_NAME"`
	MailCampaignCode string   `mapstructure:"MAIL_CAMPAIGN_CODE"`
	SNPEmails        []string `mapstructure:"SNP_EMAILS"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	// Business
	SucursalesFile string        `mapstructure:"SUCURSALES_FILE"`
	Timezone       string        `mapstructure:"TIMEZONE"`
	HTTPTimeout    time.Duration `mapstructure:"HTTP_TIMEOUT"`

	// Telemetry
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// Optional .env file for local development; a missing file is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("STORE_DRIVER", "firebase")
	v.SetDefault("FIREBASE_URL", "https://snp-novogar-default-rtdb.asia-southeast1.firebasedatabase.app")
	v.SetDefault("FIREBASE_COLLECTION", "snp")
	v.SetDefault("FIREBASE_AUTH", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("CATALOGO_URL", "https://precios-novogar-default-rtdb.firebaseio.com/precios.json")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SHEETS_ENDPOINT", "")
	v.SetDefault("MAIL_TRANSPORT", "mailup")
	v.SetDefault("MAILUP_ENDPOINT", "https://send.mailup.com/API/v2.0/messages/sendmessage")
	v.SetDefault("MAILUP_API_KEY", "")
	v.SetDefault("MAILUP_USERNAME", "")
	v.SetDefault("MAILUP_SECRET", "")
	v.SetDefault("MAIL_FROM_NAME", "SNP Novogar")
	v.SetDefault("MAIL_FROM_EMAIL", "posventa@novogar.com.ar")
	v.SetDefault("MAIL_CAMPAIGN_NAME", "SNP Novogar")
	v.SetDefault("MAIL_CAMPAIGN_CODE", "SNP-1001")
	v.SetDefault("SNP_EMAILS", "snp@novogar.com.ar,snp1@novogar.com.ar")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SUCURSALES_FILE", "sucursales.yaml")
	v.SetDefault("TIMEZONE", "America/Argentina/Cordoba")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
}
