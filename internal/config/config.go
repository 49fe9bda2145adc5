// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// configSchema is the JSON Schema every config file is checked against
// before unmarshalling, so a malformed file fails with field-level errors
// instead of half-applied settings.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "queries":          {"type": "array", "items": {"type": "string", "minLength": 1}, "minItems": 1},
    "include_keywords": {"type": "array", "items": {"type": "string"}},
    "exclude_keywords": {"type": "array", "items": {"type": "string"}},
    "job_limit":        {"type": "integer", "minimum": 0},
    "headless":         {"type": "boolean"},
    "data_dir":         {"type": "string"},
    "email":            {"type": "string"},
    "verbose":          {"type": "boolean"}
  },
  "required": ["queries"]
}`

// DefaultDataDir is where the ledger lives when the config doesn't say.
const DefaultDataDir = "data"

// Config holds the operator's run parameters, loaded from a JSON file and
// optionally overridden by CLI flags.
type Config struct {
	// Queries are the search terms, each crawled in order.
	Queries []string `json:"queries" validate:"required,min=1,dive,required"`
	// IncludeKeywords must appear in a job title for the job to pass the
	// filter; empty means everything passes.
	IncludeKeywords []string `json:"include_keywords,omitempty"`
	// ExcludeKeywords reject a job title on any match, even when an include
	// keyword also matches.
	ExcludeKeywords []string `json:"exclude_keywords,omitempty"`
	// JobLimit caps apply attempts per run; zero means no cap.
	JobLimit int    `json:"job_limit,omitempty" validate:"gte=0"`
	Headless bool   `json:"headless,omitempty"`
	DataDir  string `json:"data_dir,omitempty"`
	// Email is the account to sign in with; the password comes from the
	// keyring or environment, never from this file.
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Verbose bool   `json:"verbose,omitempty"`
}

// ValidationError carries the field-level schema violations of a config file.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single violation at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	msg := "config validation failed:"
	for _, e := range ve.Errors {
		msg += fmt.Sprintf("\n  %s: %s", e.Field, e.Message)
	}
	return msg
}

// Load reads, schema-checks, and parses a config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := checkSchema(data); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	return &cfg, nil
}

// checkSchema validates raw config JSON against configSchema.
func checkSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(configSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("failed to run schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// Validate checks the merged configuration (file values plus flag
// overrides) right before a run starts.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
