package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/acuellar/estudiobot/internal/config"
	"github.com/acuellar/estudiobot/internal/database"
	"github.com/acuellar/estudiobot/internal/notion"
	"github.com/acuellar/estudiobot/internal/store"
)

type StoreFlag string

// Set implements pflag.Value.
func (s *StoreFlag) Set(v string) error {
	switch v {
	case string(StoreFile):
		*s = StoreFile
	case string(StoreMySQL):
		*s = StoreMySQL
	default:
		return fmt.Errorf("invalid value %q, valid values are %q or %q", v, StoreFile, StoreMySQL)
	}
	return nil
}

// String implements pflag.Value.
func (s *StoreFlag) String() string {
	if s == nil {
		return ""
	}
	return string(*s)
}

// Type implements pflag.Value.
func (s *StoreFlag) Type() string {
	return "StoreFlag"
}

var (
	_ pflag.Value = (*StoreFlag)(nil)
)

const (
	StoreFile  StoreFlag = "file"
	StoreMySQL StoreFlag = "mysql"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.Load > %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cfg.Validate > %w", err)
	}
	return cfg, nil
}

// buildStore creates the persistence backend. An empty backendFlag keeps the
// configured backend. The returned closer releases database resources for
// the MySQL backend and is a no-op for the file backend.
func buildStore(cfg *config.Config, backendFlag StoreFlag) (store.Store, func() error, error) {
	backend := cfg.Store.Backend
	if backendFlag != "" {
		backend = string(backendFlag)
	}

	switch backend {
	case string(StoreMySQL):
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open > %w", err)
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("database.Migrate > %w", err)
		}
		return store.NewMySQLStore(db), db.Close, nil
	default:
		return store.NewFileStore(cfg.Store.DataDirectory), func() error { return nil }, nil
	}
}

func buildTaskSource(cfg *config.Config) *notion.Client {
	return notion.NewClient(cfg.Notion.Token, cfg.Notion.DatabaseID, notion.Properties{
		Date:    cfg.Notion.Properties.Date,
		Title:   cfg.Notion.Properties.Title,
		Subject: cfg.Notion.Properties.Subject,
		Content: cfg.Notion.Properties.Content,
	})
}
