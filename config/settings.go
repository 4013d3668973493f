package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	defaultPollInterval     = 30 * time.Second
	defaultInstanceClass    = "db.t2.micro"
	defaultEngine           = "mysql"
	defaultAllocatedStorage = 20
	defaultMaxOpenConns     = 10
	defaultLogLevel         = "info"
)

// Settings stores settings used to run the helpers
type Settings struct {
	Region string `yaml:"region"`

	// Static credentials are optional. When empty the SDK default credential chain is used.
	AccessKeyID     string `yaml:"aws_access_key_id"`
	SecretAccessKey string `yaml:"aws_secret_access_key"`
	SessionToken    string `yaml:"aws_session_token"`

	PollInterval time.Duration `yaml:"poll_interval"`

	DefaultInstanceClass    string `yaml:"default_instance_class"`
	DefaultEngine           string `yaml:"default_engine"`
	DefaultAllocatedStorage int64  `yaml:"default_allocated_storage"`
	PubliclyAccessible      bool   `yaml:"publicly_accessible"`
	MultiAZ                 bool   `yaml:"multi_az"`
	ApplyImmediately        bool   `yaml:"apply_immediately"`

	MaxOpenConns int    `yaml:"db_max_open_conns"`
	LogLevel     string `yaml:"log_level"`
}

// NewSettings returns settings populated with defaults.
func NewSettings() *Settings {
	return &Settings{
		PollInterval:            defaultPollInterval,
		DefaultInstanceClass:    defaultInstanceClass,
		DefaultEngine:           defaultEngine,
		DefaultAllocatedStorage: defaultAllocatedStorage,
		PubliclyAccessible:      true,
		MultiAZ:                 false,
		ApplyImmediately:        false,
		MaxOpenConns:            defaultMaxOpenConns,
		LogLevel:                defaultLogLevel,
	}
}

// LoadFromFile reads settings from a YAML file and then applies
// environment overrides on top.
func (s *Settings) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("LoadFromFile: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("LoadFromFile: error parsing %s: %w", path, err)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("LoadFromFile: poll_interval must be positive, got %s", s.PollInterval)
	}
	return s.LoadFromEnv()
}

// LoadFromEnv loads settings from environment variables. Unset variables
// leave the current value untouched.
func (s *Settings) LoadFromEnv() error {
	if region, ok := os.LookupEnv("AWS_DEFAULT_REGION"); ok {
		s.Region = region
	}

	if interval, ok := os.LookupEnv("POLL_AWS_INTERVAL"); ok {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("couldn't parse POLL_AWS_INTERVAL: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("POLL_AWS_INTERVAL must be positive, got %s", d)
		}
		s.PollInterval = d
	}

	if class := os.Getenv("DEFAULT_INSTANCE_CLASS"); class != "" {
		s.DefaultInstanceClass = class
	}

	if engine := os.Getenv("DEFAULT_ENGINE"); engine != "" {
		s.DefaultEngine = engine
	}

	if storage := os.Getenv("DEFAULT_ALLOCATED_STORAGE"); storage != "" {
		var err error
		s.DefaultAllocatedStorage, err = strconv.ParseInt(storage, 10, 64)
		if err != nil {
			return fmt.Errorf("couldn't load allocated storage: %w", err)
		}
	}

	var err error
	if s.PubliclyAccessible, err = lookupBool("PUBLICLY_ACCESSIBLE", s.PubliclyAccessible); err != nil {
		return err
	}
	if s.MultiAZ, err = lookupBool("MULTI_AZ", s.MultiAZ); err != nil {
		return err
	}
	if s.ApplyImmediately, err = lookupBool("APPLY_IMMEDIATELY", s.ApplyImmediately); err != nil {
		return err
	}

	if conns := os.Getenv("DB_MAX_OPEN_CONNS"); conns != "" {
		s.MaxOpenConns, err = strconv.Atoi(conns)
		if err != nil {
			return fmt.Errorf("couldn't load max open connections: %w", err)
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		s.LogLevel = level
	}

	return nil
}

func lookupBool(key string, current bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return current, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return current, fmt.Errorf("couldn't parse %s: %w", key, err)
	}
	return b, nil
}
