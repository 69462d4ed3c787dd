package solpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solpay/x402-go/canonical"
	"github.com/solpay/x402-go/types"
)

const (
	testWallet    = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testSignature = "5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7"
)

func newTestClient(t *testing.T, apiBase string, opts ...Option) *Client {
	t.Helper()
	client, err := New(&types.ClientConfig{
		APIBase:        apiBase,
		MerchantWallet: testWallet,
		Network:        types.NetworkSolanaDevnet,
		APIKey:         "sk_test",
		Timeout:        5 * time.Second,
	}, opts...)
	require.NoError(t, err)
	return client
}

func TestNewRejectsMissingNetwork(t *testing.T) {
	_, err := New(&types.ClientConfig{
		APIBase:        "https://api.solpay.cash",
		MerchantWallet: testWallet,
	})
	require.Error(t, err)

	var spErr *types.SolPayError
	require.ErrorAs(t, err, &spErr)
	assert.Equal(t, types.ErrUnsupportedNetwork, spErr.Code)
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestPaySendsNetworkAndSDKMetadata(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"id":               "pi_123",
			"status":           "pending",
			"amount_requested": 10.0,
			"amount_required":  10.26,
			"fees_total":       0.26,
			"merchant_receives": 10.0,
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	result, err := client.Pay(context.Background(), &types.CreateIntentParams{
		Amount:   decimal.NewFromFloat(10.0),
		Asset:    "USDC",
		Metadata: map[string]any{"order_id": "order_1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", result.IntentID)
	assert.Equal(t, types.StatusPending, result.Status)
	assert.Equal(t, srv.URL+"/checkout/pi_123", result.PaymentURL)
	assert.Equal(t, "10.26", result.Amount.Total.String())

	// The network must ride on every outbound request explicitly.
	x402, ok := gotBody["x402_context"].(map[string]any)
	require.True(t, ok, "x402_context missing from request body")
	assert.Equal(t, "solana:devnet", x402["network"])
	assert.Equal(t, DefaultFacilitatorID, x402["facilitator_id"])

	metadata, ok := gotBody["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, SDKName, metadata["sdk"])
	assert.Equal(t, Version, metadata["sdk_version"])
	assert.Equal(t, "order_1", metadata["order_id"])

	assert.Equal(t, testWallet, gotBody["merchant_wallet"])
}

func TestPayRejectsInvalidParams(t *testing.T) {
	client := newTestClient(t, "https://api.solpay.cash")

	_, err := client.Pay(context.Background(), &types.CreateIntentParams{
		Amount: decimal.Zero,
		Asset:  "USDC",
	})
	require.Error(t, err)

	var spErr *types.SolPayError
	require.ErrorAs(t, err, &spErr)
	assert.Equal(t, types.ErrInvalidParams, spErr.Code)
}

func TestConfirmPaymentValidatesSignature(t *testing.T) {
	client := newTestClient(t, "https://api.solpay.cash")

	_, err := client.ConfirmPayment(context.Background(), "pi_123", "garbage")
	require.Error(t, err)

	var spErr *types.SolPayError
	require.ErrorAs(t, err, &spErr)
	assert.Equal(t, types.ErrInvalidParams, spErr.Code)
}

func TestConfirmPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/payment_intents/pi_123/confirm", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "pi_123",
			"status": "succeeded",
			"receipt": map[string]any{
				"url":         "https://api.solpay.cash/receipts/rcpt_1",
				"sha256_hash": "abc",
			},
		})
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL).ConfirmPayment(context.Background(), "pi_123", testSignature)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSucceeded, result.Status)
	require.NotNil(t, result.Receipt)
	assert.Equal(t, "https://api.solpay.cash/receipts/rcpt_1", result.Receipt.URL)
}

func TestWaitForIntent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "processing"
		if calls.Add(1) >= 3 {
			status = "succeeded"
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "pi_123", "status": status})
	}))
	defer srv.Close()

	intent, err := newTestClient(t, srv.URL).WaitForIntent(context.Background(), "pi_123", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSucceeded, intent.Status)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestWaitForIntentHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "pi_123", "status": "pending"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, srv.URL).WaitForIntent(ctx, "pi_123", 10*time.Millisecond)
	assert.Error(t, err)
}

func TestVerifyReceiptEndToEnd(t *testing.T) {
	receiptBody := `{"amount":25.5,"asset":"USDC","id":"rcpt_1","memo":"order_1"`
	doc := map[string]any{
		"amount": json.Number("25.5"),
		"asset":  "USDC",
		"id":     "rcpt_1",
		"memo":   "order_1",
	}
	digest, err := canonical.Digest(doc)
	require.NoError(t, err)
	receiptBody += `,"sha256_hash":"` + digest + `"}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(receiptBody))
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL).VerifyReceipt(context.Background(), srv.URL+"/receipts/rcpt_1")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, digest, result.ComputedDigest)
	assert.Equal(t, digest, result.ReportedDigest)
}

func TestVerifyReceiptTampered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"amount":99.0,"id":"rcpt_1","sha256_hash":"` +
			"0000000000000000000000000000000000000000000000000000000000000000" + `"}`))
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL).VerifyReceipt(context.Background(), srv.URL+"/receipts/rcpt_1")
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.NotEqual(t, result.ReportedDigest, result.ComputedDigest)
}

func TestVerifyReceiptFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.VerifyReceipt(context.Background(), srv.URL+"/receipts/rcpt_1")
	require.Error(t, err)

	var spErr *types.SolPayError
	require.ErrorAs(t, err, &spErr)
	assert.Equal(t, types.ErrReceiptFetchFailed, spErr.Code)
}

func TestVerifyReceiptDocumentIsPure(t *testing.T) {
	client := newTestClient(t, "https://api.solpay.cash")

	doc := map[string]any{"amount": 10.0}
	digest, err := canonical.Digest(doc)
	require.NoError(t, err)
	doc["sha256_hash"] = digest

	first := client.VerifyReceiptDocument(doc)
	second := client.VerifyReceiptDocument(doc)
	assert.True(t, first.OK)
	assert.Equal(t, first, second)
}
