package utils

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/solpay/x402-go/types"
)

var validate = validator.New()

// ValidateIntentParams validates CreateIntentParams via struct tags plus
// the amount rules that tags cannot express.
func ValidateIntentParams(params *types.CreateIntentParams) error {
	if params == nil {
		return &types.SolPayError{
			Code:    types.ErrInvalidParams,
			Message: "params are required",
		}
	}
	if err := validate.Struct(params); err != nil {
		return &types.SolPayError{
			Code:    types.ErrInvalidParams,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}
	if _, err := ValidateAmount(params.Amount); err != nil {
		return &types.SolPayError{
			Code:    types.ErrInvalidParams,
			Message: err.Error(),
		}
	}
	return nil
}

// ValidateClientConfig validates a client configuration before a Client is
// built from it.
func ValidateClientConfig(cfg *types.ClientConfig) error {
	if cfg == nil {
		return &types.SolPayError{
			Code:    types.ErrConfigError,
			Message: "config is required",
		}
	}
	// Network first: omitting it is a security defect (cross-network
	// replay), and it deserves its own error rather than a generic
	// struct-validation message.
	if err := cfg.Network.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(cfg); err != nil {
		return &types.SolPayError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("validation failed: %v", err),
		}
	}
	if err := ValidateWalletAddress(cfg.MerchantWallet); err != nil {
		return &types.SolPayError{
			Code:    types.ErrConfigError,
			Message: err.Error(),
		}
	}
	return nil
}

// ParseClientConfig parses and validates a ClientConfig from JSON.
func ParseClientConfig(data []byte) (*types.ClientConfig, error) {
	var cfg types.ClientConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &types.SolPayError{
			Code:    types.ErrConfigError,
			Message: fmt.Sprintf("failed to parse client config: %v", err),
		}
	}
	if err := ValidateClientConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
