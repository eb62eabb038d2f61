// Package config resolves runtime configuration from the environment
// and an optional secrets file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the commands need to run.
type Config struct {
	GitHubToken string
	UsersDir    string
	OutputDir   string
	ListenAddr  string
	HTTPTimeout time.Duration
}

// Load reads configuration with this precedence: environment variables
// first, then the secrets file, then the built-in defaults. A missing
// secrets file is fine; a malformed one is not.
func Load(secretsFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("users_dir", "users")
	v.SetDefault("output_dir", "out")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("http_timeout_seconds", 10)
	v.AutomaticEnv()

	if secretsFile != "" {
		if _, err := os.Stat(secretsFile); err == nil {
			v.SetConfigFile(secretsFile)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read secrets file %s: %w", secretsFile, err)
			}
		}
	}

	return &Config{
		GitHubToken: v.GetString("github_token"),
		UsersDir:    v.GetString("users_dir"),
		OutputDir:   v.GetString("output_dir"),
		ListenAddr:  v.GetString("listen_addr"),
		HTTPTimeout: time.Duration(v.GetInt("http_timeout_seconds")) * time.Second,
	}, nil
}
