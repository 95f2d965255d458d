package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL        string `yaml:"baseUrl"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"api"`

	Session struct {
		Path string `yaml:"path"`
	} `yaml:"session"`

	Downloads struct {
		Dir string `yaml:"dir"`

		S3 struct {
			Enabled    bool   `yaml:"enabled"`
			Endpoint   string `yaml:"endpoint"`
			AccessKey  string `yaml:"accessKey"`
			SecretKey  string `yaml:"secretKey"`
			BucketName string `yaml:"bucketName"`
			Region     string `yaml:"region"`
			Prefix     string `yaml:"prefix"`
			UseSSL     bool   `yaml:"useSSL"`
		} `yaml:"s3"`
	} `yaml:"downloads"`

	Log struct {
		Path string `yaml:"path"`
		Prod bool   `yaml:"prod"`
	} `yaml:"log"`
}

// Load reads the yaml config file. A missing file is not an error: the
// defaults match the service's development setup.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000"
	}
	if c.Downloads.Dir == "" {
		c.Downloads.Dir = "downloads"
	}
}

// Timeout for the HTTP client. Zero means no timeout, matching the original
// client's behavior of letting a call resolve or reject on its own.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

