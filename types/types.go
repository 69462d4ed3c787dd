package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntentStatus is the lifecycle state of a payment intent. Transitions are
// owned entirely by the SolPay service; the client only observes them.
type IntentStatus string

const (
	StatusPending    IntentStatus = "pending"
	StatusProcessing IntentStatus = "processing"
	StatusSucceeded  IntentStatus = "succeeded"
	StatusFailed     IntentStatus = "failed"
)

// IsTerminal reports whether the status can no longer change.
func (s IntentStatus) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// X402Context carries the facilitator metadata attached to every intent.
// The SDK treats it as opaque pass-through data.
type X402Context struct {
	FacilitatorID string `json:"facilitator_id"`
	Network       string `json:"network"`
	Resource      string `json:"resource,omitempty"`
}

// Settlement is the fee breakdown embedded in a receipt. FacilitatorFee is
// optional on the wire; a nil pointer means the field was absent.
type Settlement struct {
	MerchantReceived decimal.Decimal  `json:"merchant_received" mapstructure:"merchant_received"`
	TreasuryFee      decimal.Decimal  `json:"treasury_fee" mapstructure:"treasury_fee"`
	FacilitatorFee   *decimal.Decimal `json:"facilitator_fee,omitempty" mapstructure:"facilitator_fee"`
}

// Receipt is the immutable record produced by the service once a payment
// completes. The digest field is computed over every other field and is
// never part of its own input.
type Receipt struct {
	ID                   string      `json:"id" mapstructure:"id"`
	PaymentIntentID      string      `json:"payment_intent_id" mapstructure:"payment_intent_id"`
	MerchantWallet       string      `json:"merchant_wallet" mapstructure:"merchant_wallet"`
	Amount               float64     `json:"amount" mapstructure:"amount"`
	Asset                string      `json:"asset" mapstructure:"asset"`
	TransactionSignature string      `json:"transaction_signature" mapstructure:"transaction_signature"`
	Memo                 string      `json:"memo" mapstructure:"memo"`
	Timestamp            string      `json:"timestamp" mapstructure:"timestamp"`
	Settlement           *Settlement `json:"settlement,omitempty" mapstructure:"settlement"`
	SHA256Hash           string      `json:"sha256_hash" mapstructure:"sha256_hash"`
}

// ReceiptRef is the pointer to a receipt returned inline on an intent:
// the retrievable URL plus the fields callers most often display.
type ReceiptRef struct {
	URL                  string `json:"url"`
	SHA256Hash           string `json:"sha256_hash"`
	Memo                 string `json:"memo"`
	TransactionSignature string `json:"transaction_signature"`
}

// PaymentIntent is the server's representation of a payment request.
type PaymentIntent struct {
	ID               string          `json:"id"`
	Status           IntentStatus    `json:"status"`
	PaymentURL       string          `json:"payment_url,omitempty"`
	AmountRequested  decimal.Decimal `json:"amount_requested"`
	AmountRequired   decimal.Decimal `json:"amount_required"`
	FeesTotal        decimal.Decimal `json:"fees_total"`
	MerchantReceives decimal.Decimal `json:"merchant_receives"`
	Receipt          *ReceiptRef     `json:"receipt,omitempty"`
	Settlement       *Settlement     `json:"settlement,omitempty"`
	X402Context      *X402Context    `json:"x402_context,omitempty"`
	CreatedAt        *time.Time      `json:"created_at,omitempty"`
}

// CreateIntentParams are the caller-supplied inputs for a new payment intent.
type CreateIntentParams struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Asset         string          `json:"asset" validate:"required"`
	CustomerEmail string          `json:"customer_email,omitempty" validate:"omitempty,email"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
	SuccessURL    string          `json:"success_url,omitempty" validate:"omitempty,url"`
	CancelURL     string          `json:"cancel_url,omitempty" validate:"omitempty,url"`
}

// AmountBreakdown summarizes what the customer pays and the merchant nets.
type AmountBreakdown struct {
	Requested decimal.Decimal `json:"requested"`
	Total     decimal.Decimal `json:"total"`
	Fees      decimal.Decimal `json:"fees"`
	Net       decimal.Decimal `json:"net"`
}

// PaymentResult is the SDK-level view of an intent returned by Pay,
// ConfirmPayment and WaitForIntent.
type PaymentResult struct {
	IntentID   string          `json:"intent_id"`
	PaymentURL string          `json:"payment_url"`
	Status     IntentStatus    `json:"status"`
	Amount     AmountBreakdown `json:"amount"`
	Receipt    *ReceiptRef     `json:"receipt,omitempty"`
	Settlement *Settlement     `json:"settlement,omitempty"`
	X402       *X402Context    `json:"x402,omitempty"`
}

// VerificationResult is the outcome of verifying a receipt document.
// A digest mismatch is routine data, reported through OK, never an error.
type VerificationResult struct {
	OK             bool           `json:"ok"`
	ComputedDigest string         `json:"computed_digest"`
	ReportedDigest string         `json:"reported_digest"`
	Receipt        map[string]any `json:"receipt,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// ClientConfig holds the construction-time configuration for a Client.
// Debug-style behavior is configured here per instance, never through
// package-level state.
type ClientConfig struct {
	APIBase        string        `json:"api_base" yaml:"api_base" validate:"required,url"`
	MerchantWallet string        `json:"merchant_wallet" yaml:"merchant_wallet" validate:"required"`
	Network        Network       `json:"network" yaml:"network" validate:"required"`
	FacilitatorID  string        `json:"facilitator_id,omitempty" yaml:"facilitator_id"`
	FacilitatorURL string        `json:"facilitator_url,omitempty" yaml:"facilitator_url" validate:"omitempty,url"`
	APIKey         string        `json:"api_key,omitempty" yaml:"api_key"`
	Timeout        time.Duration `json:"timeout,omitempty" yaml:"timeout"`
	RetryCount     int           `json:"retry_count,omitempty" yaml:"retry_count"`
	LogLevel       string        `json:"log_level,omitempty" yaml:"log_level"`
}

// SolPayError is the error type returned by the SDK for caller and
// transport failures.
type SolPayError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *SolPayError) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrInvalidParams      = "INVALID_PARAMS"
	ErrUnsupportedNetwork = "UNSUPPORTED_NETWORK"
	ErrTransportError     = "TRANSPORT_ERROR"
	ErrReceiptFetchFailed = "RECEIPT_FETCH_FAILED"
	ErrInvalidResponse    = "INVALID_RESPONSE"
	ErrConfigError        = "CONFIG_ERROR"
	ErrUnsupportedValue   = "UNSUPPORTED_VALUE"
)
