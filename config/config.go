// Package config loads client configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/solpay/x402-go/types"
	"github.com/solpay/x402-go/utils"
)

// File mirrors the on-disk YAML layout. Durations are strings so the file
// can say "30s" rather than nanosecond counts.
type File struct {
	APIBase        string `yaml:"api_base"`
	MerchantWallet string `yaml:"merchant_wallet"`
	Network        string `yaml:"network"`
	FacilitatorID  string `yaml:"facilitator_id"`
	FacilitatorURL string `yaml:"facilitator_url"`
	APIKey         string `yaml:"api_key"`
	Timeout        string `yaml:"timeout"`
	RetryCount     int    `yaml:"retry_count"`
	LogLevel       string `yaml:"log_level"`
}

// Load reads, parses and validates a client configuration file.
func Load(path string) (*types.ClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.SolPayError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to read config file: %v", err),
		}
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &types.SolPayError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to parse config file: %v", err),
		}
	}
	return f.ToClientConfig()
}

// ToClientConfig converts the file layout into a validated ClientConfig.
func (f *File) ToClientConfig() (*types.ClientConfig, error) {
	cfg := &types.ClientConfig{
		APIBase:        f.APIBase,
		MerchantWallet: f.MerchantWallet,
		Network:        types.Network(f.Network),
		FacilitatorID:  f.FacilitatorID,
		FacilitatorURL: f.FacilitatorURL,
		APIKey:         f.APIKey,
		RetryCount:     f.RetryCount,
		LogLevel:       f.LogLevel,
	}

	if f.Timeout != "" {
		timeout, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return nil, &types.SolPayError{
				Code:    types.ErrConfigError,
				Message: fmt.Sprintf("invalid timeout: %v", err),
			}
		}
		cfg.Timeout = timeout
	}

	if err := utils.ValidateClientConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
