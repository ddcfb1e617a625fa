// Package config loads awsaudit.yaml, which holds the mail server and
// report email content. The billing and organization settings all come
// from CLI flags; only email needs a file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config is looked up unless overridden.
const DefaultPath = "awsaudit.yaml"

// Config represents the top-level awsaudit.yaml configuration.
type Config struct {
	Email EmailConfig `yaml:"email"`
}

// EmailConfig holds the SMTP relay and the report framing. Subject and
// preamble strings may contain the tokens {month_name}, {month},
// {day}, {year} and {date}, expanded at send time.
type EmailConfig struct {
	Server          string `yaml:"server"` // host:port of the SMTP relay
	From            string `yaml:"from"`
	To              string `yaml:"to"`
	SubjectWeekly   string `yaml:"subject_weekly"`
	SubjectMonthly  string `yaml:"subject_monthly"`
	Preamble        string `yaml:"preamble"`
	PreambleWeekly  string `yaml:"preamble_weekly"`
	PreambleMonthly string `yaml:"preamble_monthly"`
}

// Default returns a config with the stock report framing and a local
// relay.
func Default() *Config {
	return &Config{
		Email: EmailConfig{
			Server:          "localhost:25",
			From:            "AWS Billing Watcher <aws-watcher@example.corp>",
			To:              "list@example.corp",
			SubjectWeekly:   "AWS Incremental Totals for {month_name} {year} (READ THIS)",
			SubjectMonthly:  "AWS End-of-Month Totals for {month_name} {year} (READ THIS)",
			PreambleWeekly:  "Incremental totals for this month's AWS usage, from the 1st through today ({date}).\n\n",
			PreambleMonthly: "Final AWS totals for the month of {month_name}, {year}.\n\n",
			Preamble: "Please review your AWS usage below and confirm it matches your expectations.\n\n" +
				"Note: AWS EC2 instances cost something whenever they \"run\", so shut down or\n" +
				"terminate instances when you finish with them.  Consider using Spot Instances.\n\n",
		},
	}
}

// Load reads an awsaudit.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
