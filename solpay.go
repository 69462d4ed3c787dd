// Package solpay is the Go SDK for the SolPay payment service: it creates
// payment intents with x402 facilitator context, tracks their lifecycle,
// and cryptographically verifies the receipts the service produces.
package solpay

import (
	"context"
	"net/http"
	"time"

	"github.com/solpay/x402-go/logger"
	"github.com/solpay/x402-go/metrics"
	"github.com/solpay/x402-go/receipt"
	"github.com/solpay/x402-go/transport"
	"github.com/solpay/x402-go/types"
	"github.com/solpay/x402-go/utils"
)

// Version information
const (
	Version     = "1.0.0"
	SDKName     = "solpay-x402-go"
	X402Version = 1
)

// Default facilitator context attached to intents when the config does not
// override it.
const (
	DefaultFacilitatorID  = "facilitator.payai.network"
	DefaultFacilitatorURL = "https://facilitator.payai.network"
)

const defaultPollInterval = 2 * time.Second

// Client is the SolPay SDK entry point. All behavior, including log
// verbosity, is fixed at construction; there is no package-level mutable
// state.
type Client struct {
	config    *types.ClientConfig
	transport *transport.Client

	log     logger.Logger
	metrics metrics.Recorder

	timeout    time.Duration
	httpClient *http.Client
}

// New creates a Client from a validated configuration.
func New(cfg *types.ClientConfig, opts ...Option) (*Client, error) {
	if err := utils.ValidateClientConfig(cfg); err != nil {
		return nil, err
	}

	c := &Client{
		config:  cfg,
		log:     logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
		timeout: cfg.Timeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.transport = transport.NewClient(cfg.APIBase, cfg.APIKey, c.timeout, cfg.RetryCount, c.httpClient)
	return c, nil
}

// Pay creates a payment intent for the configured merchant wallet and
// network. The network identifier is always sent explicitly; it is a
// validated construction-time value, never a server-side default.
func (c *Client) Pay(ctx context.Context, params *types.CreateIntentParams) (*types.PaymentResult, error) {
	if err := utils.ValidateIntentParams(params); err != nil {
		return nil, err
	}

	start := time.Now()
	c.log.Debug("creating payment intent", map[string]any{
		"amount": params.Amount.String(),
		"asset":  params.Asset,
	})

	intent, err := c.transport.CreateIntent(ctx, c.intentBody(params))
	if err != nil {
		c.log.Error("payment intent creation failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.metrics.IncCounter("payment_intent_created", c.labels())
	c.metrics.ObserveLatency("pay", time.Since(start), c.labels())
	c.log.Debug("payment intent created", map[string]any{
		"intent_id": intent.ID,
		"status":    intent.Status,
	})
	return c.intentToResult(intent), nil
}

// ConfirmPayment confirms an intent with the signature of the on-chain
// transaction that paid it.
func (c *Client) ConfirmPayment(ctx context.Context, intentID, signature string) (*types.PaymentResult, error) {
	if intentID == "" {
		return nil, &types.SolPayError{
			Code:    types.ErrInvalidParams,
			Message: "intent id is required",
		}
	}
	if err := utils.ValidateTransactionSignature(signature); err != nil {
		return nil, &types.SolPayError{
			Code:    types.ErrInvalidParams,
			Message: err.Error(),
		}
	}

	start := time.Now()
	c.log.Debug("confirming payment", map[string]any{"intent_id": intentID})

	intent, err := c.transport.ConfirmIntent(ctx, intentID, signature)
	if err != nil {
		c.log.Error("payment confirmation failed", map[string]any{
			"intent_id": intentID,
			"error":     err.Error(),
		})
		return nil, err
	}

	c.metrics.IncCounter("payment_confirmed", c.labels())
	c.metrics.ObserveLatency("confirm", time.Since(start), c.labels())
	return c.intentToResult(intent), nil
}

// GetPaymentIntent fetches the current server-side state of an intent.
func (c *Client) GetPaymentIntent(ctx context.Context, intentID string) (*types.PaymentIntent, error) {
	if intentID == "" {
		return nil, &types.SolPayError{
			Code:    types.ErrInvalidParams,
			Message: "intent id is required",
		}
	}

	start := time.Now()
	intent, err := c.transport.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveLatency("get_intent", time.Since(start), c.labels())
	return intent, nil
}

// WaitForIntent polls an intent until it reaches a terminal status or ctx
// is done. An interval of zero uses the default. The lifecycle state
// machine is owned by the server; this only observes it.
func (c *Client) WaitForIntent(ctx context.Context, intentID string, interval time.Duration) (*types.PaymentIntent, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	for {
		intent, err := c.GetPaymentIntent(ctx, intentID)
		if err != nil {
			return nil, err
		}
		if intent.Status.IsTerminal() {
			return intent, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// VerifyReceipt fetches the receipt document at url and verifies its
// digest. A fetch failure is returned as a transport error and never as a
// digest mismatch; a mismatch is reported in the result with OK=false.
func (c *Client) VerifyReceipt(ctx context.Context, url string) (*types.VerificationResult, error) {
	start := time.Now()
	c.log.Debug("verifying receipt", map[string]any{"receipt_url": url})

	raw, err := c.transport.FetchReceipt(ctx, url)
	if err != nil {
		c.metrics.IncCounter("receipt_fetch_failed", c.labels())
		return nil, err
	}

	result := receipt.VerifyBytes(raw)
	if result.OK {
		c.metrics.IncCounter("receipt_verified", c.labels())
	} else {
		c.metrics.IncCounter("receipt_mismatch", c.labels())
	}
	c.metrics.ObserveLatency("verify_receipt", time.Since(start), c.labels())
	c.log.Debug("receipt verification result", map[string]any{
		"ok":              result.OK,
		"computed_digest": result.ComputedDigest,
		"reported_digest": result.ReportedDigest,
	})
	return result, nil
}

// VerifyReceiptDocument verifies an already-fetched receipt document. Pure
// computation; safe for unbounded concurrent use.
func (c *Client) VerifyReceiptDocument(doc map[string]any) *types.VerificationResult {
	return receipt.Verify(doc)
}

// Network returns the network this client was constructed for.
func (c *Client) Network() types.Network {
	return c.config.Network
}

func (c *Client) intentBody(params *types.CreateIntentParams) map[string]any {
	metadata := map[string]any{
		"sdk":         SDKName,
		"sdk_version": Version,
	}
	for k, v := range params.Metadata {
		metadata[k] = v
	}

	facilitatorID := c.config.FacilitatorID
	if facilitatorID == "" {
		facilitatorID = DefaultFacilitatorID
	}

	body := map[string]any{
		"amount":          params.Amount.InexactFloat64(),
		"asset":           params.Asset,
		"merchant_wallet": c.config.MerchantWallet,
		"metadata":        metadata,
		"x402_context": map[string]any{
			"facilitator_id": facilitatorID,
			"network":        c.config.Network.String(),
			"resource":       c.config.APIBase + "/api/v1/payment_intents",
		},
	}
	if params.CustomerEmail != "" {
		body["customer_email"] = params.CustomerEmail
	}
	if params.SuccessURL != "" {
		body["success_url"] = params.SuccessURL
	}
	if params.CancelURL != "" {
		body["cancel_url"] = params.CancelURL
	}
	return body
}

func (c *Client) intentToResult(intent *types.PaymentIntent) *types.PaymentResult {
	paymentURL := intent.PaymentURL
	if paymentURL == "" {
		paymentURL = c.config.APIBase + "/checkout/" + intent.ID
	}

	return &types.PaymentResult{
		IntentID:   intent.ID,
		PaymentURL: paymentURL,
		Status:     intent.Status,
		Amount: types.AmountBreakdown{
			Requested: intent.AmountRequested,
			Total:     intent.AmountRequired,
			Fees:      intent.FeesTotal,
			Net:       intent.MerchantReceives,
		},
		Receipt:    intent.Receipt,
		Settlement: intent.Settlement,
		X402:       intent.X402Context,
	}
}

func (c *Client) labels() map[string]string {
	return map[string]string{"network": c.config.Network.String()}
}
