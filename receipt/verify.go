// Package receipt verifies payment receipts against their reported digest.
// The verifier is a pure function over an already-parsed document: fetching,
// caching and display of receipts belong to the caller.
package receipt

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"github.com/solpay/x402-go/canonical"
	"github.com/solpay/x402-go/types"
)

// Digest field names recognized on a receipt document. Every alias is
// stripped before hashing so a stale legacy field can never leak into the
// computed digest.
const (
	DigestField       = "sha256_hash"
	LegacyDigestField = "hash"
)

const (
	errMissingDigest = "missing digest field"
	errInvalidFormat = "invalid receipt format"
)

// Verify checks a parsed receipt document against the digest it reports.
//
// The reported digest is extracted, all digest aliases are removed from a
// shallow copy, the remainder is canonicalized and hashed, and the two
// digests are compared in constant time. A mismatch is the expected
// "tamper detected" outcome and is reported through OK, not an error;
// malformed input likewise never panics or returns a Go error.
func Verify(doc map[string]any) *types.VerificationResult {
	if doc == nil {
		return &types.VerificationResult{
			OK:    false,
			Error: errInvalidFormat,
		}
	}

	reported, present := reportedDigest(doc)
	if !present {
		return &types.VerificationResult{
			OK:      false,
			Receipt: doc,
			Error:   errMissingDigest,
		}
	}

	stripped := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == DigestField || k == LegacyDigestField {
			continue
		}
		stripped[k] = v
	}

	computed, err := canonical.Digest(stripped)
	if err != nil {
		return &types.VerificationResult{
			OK:             false,
			ReportedDigest: reported,
			Receipt:        doc,
			Error:          err.Error(),
		}
	}

	return &types.VerificationResult{
		OK:             digestsEqual(computed, reported),
		ComputedDigest: computed,
		ReportedDigest: reported,
		Receipt:        doc,
	}
}

// VerifyBytes parses a raw receipt body and verifies it. Numbers are kept
// as json.Number so the wire distinction between 10 and 10.0 survives into
// the canonical form. A body that is not a JSON object yields the
// "invalid receipt format" result, not an error.
func VerifyBytes(raw []byte) *types.VerificationResult {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return &types.VerificationResult{
			OK:    false,
			Error: errInvalidFormat,
		}
	}
	return Verify(doc)
}

// Decode maps a receipt document onto the structural Receipt record.
// Shape problems (missing fields, wrong types) surface here, at the
// boundary, rather than deep inside the serializer.
func Decode(doc map[string]any) (*types.Receipt, error) {
	var r types.Receipt
	cfg := &mapstructure.DecoderConfig{
		Result:           &r,
		WeaklyTypedInput: true,
		DecodeHook:       decimalHook,
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(doc); err != nil {
		return nil, &types.SolPayError{
			Code:    types.ErrInvalidResponse,
			Message: "receipt does not match expected shape: " + err.Error(),
		}
	}
	return &r, nil
}

// decimalHook converts the numeric forms a JSON decoder can produce into
// decimal.Decimal for the settlement breakdown fields.
func decimalHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(decimal.Decimal{}) {
		return data, nil
	}
	switch v := data.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return data, nil
	}
}

// reportedDigest extracts the digest a receipt claims for itself. A field
// holding a non-string value still counts as present: the comparison then
// fails as an ordinary mismatch rather than "missing digest field".
func reportedDigest(doc map[string]any) (string, bool) {
	for _, field := range []string{DigestField, LegacyDigestField} {
		v, ok := doc[field]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			if s == "" {
				continue
			}
			return s, true
		}
		return fmt.Sprintf("%v", v), true
	}
	return "", false
}

// digestsEqual compares two hex digests with timing independent of the
// mismatch position. Not guarding a secret, just the uniform way hash
// comparisons are done here.
func digestsEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
