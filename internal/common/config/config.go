// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Upload        UploadConfig       `mapstructure:"upload"`
	APIs          APIsConfig         `mapstructure:"apis"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// ResultTTL bounds how long cached evaluation results live, in minutes.
	ResultTTL int `mapstructure:"result_ttl"`
}

// UploadConfig holds file acceptance rules per submission purpose.
type UploadConfig struct {
	// MaxCVSizeBytes caps candidacy CV uploads. Zero means no cap.
	MaxCVSizeBytes int64 `mapstructure:"max_cv_size_bytes"`
	// MaxJustificatifSizeBytes caps absence justificatif uploads.
	MaxJustificatifSizeBytes int64 `mapstructure:"max_justificatif_size_bytes"`
	// Directory where validated documents are persisted.
	Directory string `mapstructure:"directory"`
	// DebugExtraction appends extracted text to a diagnostic log file.
	DebugExtraction bool   `mapstructure:"debug_extraction"`
	DebugLogPath    string `mapstructure:"debug_log_path"`
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	Gemini struct {
		BaseURL     string  `mapstructure:"base_url"`
		Model       string  `mapstructure:"model"`
		APIKey      string  `mapstructure:"api_key"`
		Timeout     int     `mapstructure:"timeout"` // milliseconds
		Temperature float64 `mapstructure:"temperature"`
		TopP        float64 `mapstructure:"top_p"`
		TopK        int     `mapstructure:"top_k"`
	} `mapstructure:"gemini"`

	OCR struct {
		BaseURL  string `mapstructure:"base_url"`
		APIKey   string `mapstructure:"api_key"`
		Language string `mapstructure:"language"`
		Timeout  int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"ocr"`
}

// NotificationConfig holds settings for the notification dispatcher.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		FromName  string `mapstructure:"from_name"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool `mapstructure:"enabled"`
		// DefaultCountryPrefix is prepended to local numbers, e.g. "+216".
		DefaultCountryPrefix string `mapstructure:"default_country_prefix"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
