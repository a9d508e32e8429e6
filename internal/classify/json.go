package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

// cleanModelJSON strips Markdown fences and surrounding junk the model
// sometimes emits despite being told not to. open/close are the expected
// JSON delimiters ("{"/"}" or "["/"]").
func cleanModelJSON(raw, open, close string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: keep only from the first opening delimiter to the
	// last closing one.
	if start := strings.Index(s, open); start != -1 {
		if end := strings.LastIndex(s, close); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+len(close)])
		}
	}

	return s
}

// decodeObject parses raw model text into a generic JSON object.
func decodeObject(raw string) (map[string]interface{}, error) {
	clean := cleanModelJSON(raw, "{", "}")
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return nil, fmt.Errorf("decodeObject: unmarshal: %w", err)
	}
	return obj, nil
}

// decodeArray parses raw model text into a generic JSON array.
func decodeArray(raw string) ([]interface{}, error) {
	clean := cleanModelJSON(raw, "[", "]")
	var arr []interface{}
	if err := json.Unmarshal([]byte(clean), &arr); err != nil {
		return nil, fmt.Errorf("decodeArray: unmarshal: %w", err)
	}
	return arr, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getNumberField(m map[string]interface{}, key string, required bool) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return decimal.Zero, fmt.Errorf("missing required field %q", key)
		}
		return decimal.Zero, nil
	}
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val), nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %q: %w", key, err)
		}
		return d, nil
	case string:
		// Models occasionally quote numbers.
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %q is %q, want number", key, val)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}

func getBoolField(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func getStringSliceField(m map[string]interface{}, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// guessFromRaw converts a decoded categorization object into a Guess.
func guessFromRaw(obj map[string]interface{}, amount decimal.Decimal) (Guess, error) {
	category, err := getStringField(obj, "category", true)
	if err != nil {
		return Guess{}, err
	}
	kindStr, err := getStringField(obj, "type", false)
	if err != nil {
		return Guess{}, err
	}
	return Guess{
		Category: category,
		Tags:     getStringSliceField(obj, "tags"),
		Kind:     domain.ParseKind(kindStr, amount),
	}, nil
}

// linesFromRaw converts a decoded statement array into transaction lines.
// Lines missing required fields are individually skipped rather than
// failing the whole statement.
func linesFromRaw(arr []interface{}) []Line {
	lines := make([]Line, 0, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		dateStr, err := getStringField(obj, "date", true)
		if err != nil {
			continue
		}
		date, err := civil.ParseDate(dateStr)
		if err != nil {
			continue
		}
		amount, err := getNumberField(obj, "amount", true)
		if err != nil {
			continue
		}
		desc, err := getStringField(obj, "description", true)
		if err != nil {
			continue
		}
		lines = append(lines, Line{
			Date:        date,
			Amount:      amount,
			Description: desc,
			Refund:      getBoolField(obj, "isRefund") || amount.IsPositive(),
		})
	}
	return lines
}

// emailFromRaw converts a decoded email-extraction object into an
// EmailResult, or nil when the object carries no usable amount.
func emailFromRaw(obj map[string]interface{}) *EmailResult {
	amount, err := getNumberField(obj, "amount", true)
	if err != nil || amount.IsZero() {
		return nil
	}
	desc, err := getStringField(obj, "description", true)
	if err != nil {
		return nil
	}

	res := &EmailResult{
		Amount:      amount,
		Description: desc,
		Kind:        domain.KindFromAmount(amount),
	}

	if dateStr, err := getStringField(obj, "date", false); err == nil && dateStr != "" {
		if date, err := civil.ParseDate(dateStr); err == nil {
			res.Date = date
		}
	}
	if account, err := getStringField(obj, "account", false); err == nil {
		res.Account = account
	}
	if kindStr, err := getStringField(obj, "type", false); err == nil && kindStr != "" {
		res.Kind = domain.ParseKind(kindStr, amount)
	}

	return res
}
