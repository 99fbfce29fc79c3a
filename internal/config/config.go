// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Notion   NotionConfig   `mapstructure:"notion"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Report   ReportConfig   `mapstructure:"report"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
}

type NotionConfig struct {
	Token      string           `mapstructure:"token" validate:"required"`
	DatabaseID string           `mapstructure:"database_id" validate:"required"`
	Properties PropertiesConfig `mapstructure:"properties"`
}

// PropertiesConfig maps the property names used in the Notion database. If a
// column is renamed in Notion, only the config has to change.
type PropertiesConfig struct {
	Date    string `mapstructure:"date"`
	Title   string `mapstructure:"title"`
	Subject string `mapstructure:"subject"`
	Content string `mapstructure:"content"`
}

type StoreConfig struct {
	Backend       string `mapstructure:"backend" validate:"oneof=file mysql"`
	DataDirectory string `mapstructure:"data_directory"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	Database        string            `mapstructure:"database"`
	TLS             bool              `mapstructure:"tls"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime"`
	Params          map[string]string `mapstructure:"params"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// ReportConfig sets when the weekly summary goes out.
type ReportConfig struct {
	Day  string `mapstructure:"day" validate:"oneof=sunday monday tuesday wednesday thursday friday saturday"`
	Time string `mapstructure:"time" validate:"required,hhmm"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/estudiobot")
	}

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.data_directory", "data")
	v.SetDefault("server.port", 8080)
	v.SetDefault("report.day", "sunday")
	v.SetDefault("report.time", "20:00")
	v.SetDefault("notion.properties.date", "Date")
	v.SetDefault("notion.properties.title", "Name")
	v.SetDefault("notion.properties.subject", "Ramo")
	v.SetDefault("notion.properties.content", "Contenido")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)

	// Bind credentials to environment variables only (not from config file)
	if err := v.BindEnv("telegram.token", "TELEGRAM_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind TELEGRAM_TOKEN environment variable: %w", err)
	}
	if err := v.BindEnv("notion.token", "NOTION_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind NOTION_TOKEN environment variable: %w", err)
	}
	if err := v.BindEnv("notion.database_id", "NOTION_DB_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind NOTION_DB_ID environment variable: %w", err)
	}
	if err := v.BindEnv("server.port", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind PORT environment variable: %w", err)
	}
	if err := v.BindEnv("database.password", "ESTUDIOBOT_DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind ESTUDIOBOT_DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded configuration and returns all violations as a
// single error with human-readable messages.
func (cfg *Config) Validate() error {
	validate, trans, err := newValidator()
	if err != nil {
		return fmt.Errorf("newValidator > %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validate.Struct > %w", err)
		}
		messages := make([]string, 0, len(verrs))
		for _, verr := range verrs {
			messages = append(messages, verr.Translate(trans))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}
	return nil
}
