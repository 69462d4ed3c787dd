// Package canonical renders JSON-compatible values into a single
// deterministic string form and hashes it. Any party, in any language,
// recomputes the same bytes for the same logical value regardless of the
// key order it arrived with, which is what makes receipt digests
// independently checkable.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

// UnsupportedValueError reports a value outside the JSON data model: a
// non-finite number, a cyclic structure, or a Go type with no JSON
// rendering. It is fatal to the single Marshal call and never coerced.
type UnsupportedValueError struct {
	Value interface{}
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("canonical: unsupported value of type %T", e.Value)
}

// Marshal converts a JSON-compatible value into its canonical form:
//
//   - object members sorted ascending by key code points
//   - array element order preserved
//   - no insignificant whitespace
//   - exactly one rendering per value (see number rules below)
//
// Numbers follow one pinned cross-language rule. Integer-typed values and
// json.Number literals without a fraction or exponent render as plain
// decimal integers. Float-typed values render as the shortest decimal that
// round-trips, with ".0" appended when the result would otherwise look
// integral, so 10.0 renders "10.0" and stays distinct from the integer 10.
// decimal.Decimal values render their exact decimal string.
//
// Marshal is a pure function with no side effects. It fails only with
// *UnsupportedValueError.
func Marshal(v interface{}) (string, error) {
	var sb strings.Builder
	seen := make(map[uintptr]struct{})
	if err := encode(&sb, v, seen); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Digest returns the lowercase hexadecimal SHA-256 of the UTF-8 canonical
// form of v.
func Digest(v interface{}) (string, error) {
	s, err := Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]), nil
}

func encode(sb *strings.Builder, v interface{}, seen map[uintptr]struct{}) error {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if val {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case string:
		encodeString(sb, val)
	case json.Number:
		return encodeNumberLiteral(sb, val)
	case decimal.Decimal:
		sb.WriteString(val.String())
	case *decimal.Decimal:
		if val == nil {
			sb.WriteString("null")
		} else {
			sb.WriteString(val.String())
		}
	case float64:
		return encodeFloat(sb, val)
	case float32:
		return encodeFloat(sb, float64(val))
	case int:
		sb.WriteString(strconv.FormatInt(int64(val), 10))
	case int8:
		sb.WriteString(strconv.FormatInt(int64(val), 10))
	case int16:
		sb.WriteString(strconv.FormatInt(int64(val), 10))
	case int32:
		sb.WriteString(strconv.FormatInt(int64(val), 10))
	case int64:
		sb.WriteString(strconv.FormatInt(val, 10))
	case uint:
		sb.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint8:
		sb.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint16:
		sb.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint32:
		sb.WriteString(strconv.FormatUint(uint64(val), 10))
	case uint64:
		sb.WriteString(strconv.FormatUint(val, 10))
	case []interface{}:
		return encodeArray(sb, val, seen)
	case map[string]interface{}:
		return encodeObject(sb, val, seen)
	default:
		return &UnsupportedValueError{Value: v}
	}
	return nil
}

func encodeArray(sb *strings.Builder, arr []interface{}, seen map[uintptr]struct{}) error {
	if arr != nil {
		ptr := reflect.ValueOf(arr).Pointer()
		if _, ok := seen[ptr]; ok {
			return &UnsupportedValueError{Value: arr}
		}
		seen[ptr] = struct{}{}
		defer delete(seen, ptr)
	}

	sb.WriteByte('[')
	for i, item := range arr {
		if i > 0 {
			sb.WriteByte(',')
		}
		if err := encode(sb, item, seen); err != nil {
			return err
		}
	}
	sb.WriteByte(']')
	return nil
}

func encodeObject(sb *strings.Builder, obj map[string]interface{}, seen map[uintptr]struct{}) error {
	if obj != nil {
		ptr := reflect.ValueOf(obj).Pointer()
		if _, ok := seen[ptr]; ok {
			return &UnsupportedValueError{Value: obj}
		}
		seen[ptr] = struct{}{}
		defer delete(seen, ptr)
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		encodeString(sb, k)
		sb.WriteByte(':')
		if err := encode(sb, obj[k], seen); err != nil {
			return err
		}
	}
	sb.WriteByte('}')
	return nil
}

// encodeNumberLiteral normalizes a json.Number. The literal's shape decides
// whether the value is an integer or a float, so "10" and "10.0" from the
// wire keep distinct canonical renderings while "10.00" and "1E1" collapse
// to the stable float form "10.0".
func encodeNumberLiteral(sb *strings.Builder, n json.Number) error {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		i, err := n.Int64()
		if err == nil {
			sb.WriteString(strconv.FormatInt(i, 10))
			return nil
		}
		// Integer literal beyond int64 range: keep the digits as-is,
		// minus any redundant leading "+".
		sb.WriteString(strings.TrimPrefix(s, "+"))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return &UnsupportedValueError{Value: n}
	}
	return encodeFloat(sb, f)
}

// encodeFloat renders the shortest round-trip decimal, forcing a ".0"
// suffix on integral values so floats never collide with integers.
// Notation is fixed for decimal exponents in [-4, 16) and scientific
// outside that range, which keeps the output byte-identical with the
// reference implementation's float rendering.
func encodeFloat(sb *strings.Builder, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return &UnsupportedValueError{Value: f}
	}
	abs := math.Abs(f)
	var s string
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		s = strconv.FormatFloat(f, 'e', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
	}
	sb.WriteString(s)
	return nil
}

const hexDigits = "0123456789abcdef"

// encodeString writes the JSON-escaped form of s. Quote, backslash and
// control characters use their short escapes, forward slash is never
// escaped, and every character above U+007F is escaped as \uXXXX UTF-16
// code units (a surrogate pair for characters beyond the BMP), so the
// output stays pure ASCII and byte-identical across languages.
func encodeString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			switch {
			case r < 0x20:
				writeUnicodeEscape(sb, r)
			case r < 0x80:
				sb.WriteByte(byte(r))
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				writeUnicodeEscape(sb, hi)
				writeUnicodeEscape(sb, lo)
			default:
				writeUnicodeEscape(sb, r)
			}
		}
	}
	sb.WriteByte('"')
}

func writeUnicodeEscape(sb *strings.Builder, r rune) {
	sb.WriteString(`\u`)
	sb.WriteByte(hexDigits[r>>12&0xf])
	sb.WriteByte(hexDigits[r>>8&0xf])
	sb.WriteByte(hexDigits[r>>4&0xf])
	sb.WriteByte(hexDigits[r&0xf])
}
