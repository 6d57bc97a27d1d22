package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

const DefaultEmailSubject = "Official Receipt – Spring Semester Contribution"

// Run holds the per-run settings loaded from the JSON config file.
// Unknown keys are ignored; missing keys stay empty except where a
// default is documented.
type Run struct {
	Currency     string `json:"currency"` // default "RWF"
	Semester     string `json:"semester"`
	FromName     string `json:"from_name"`
	FromEmail    string `json:"from_email"`
	FromTitle    string `json:"from_title"`
	AmountWords  string `json:"amount_words"`
	EmailSubject string `json:"email_subject"` // default DefaultEmailSubject
}

// SMTP is resolved once from the environment. Username/Password may stay
// empty; the sender then skips authentication.
type SMTP struct {
	Host     string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
}

func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := &Run{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Currency == "" {
		cfg.Currency = "RWF"
	}
	if cfg.EmailSubject == "" {
		cfg.EmailSubject = DefaultEmailSubject
	}
	return cfg, nil
}

func LoadSMTP() (SMTP, error) {
	var cfg SMTP
	if err := env.Parse(&cfg); err != nil {
		return SMTP{}, fmt.Errorf("parse smtp environment: %w", err)
	}
	return cfg, nil
}
