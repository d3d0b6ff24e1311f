package mediation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedVariants = errors.New("provider output is not a list of proposals")
	ErrNoVariants        = errors.New("provider output contains no proposals")
)

// StripFence removes a surrounding markdown code fence (with optional language tag).
func StripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "[{\"") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseVariants decodes a JSON array of proposal strings. Blank elements are dropped.
func ParseVariants(raw string) ([]string, error) {
	body := StripFence(raw)
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedVariants, err)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		text, err := variantText(item)
		if err != nil {
			return nil, err
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoVariants
	}
	return out, nil
}

// variantText accepts a bare string, or an object with a proposal/text/content field.
func variantText(item json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return s, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(item, &obj); err != nil {
		return "", fmt.Errorf("%w: unsupported element %s", ErrMalformedVariants, string(item))
	}
	for _, field := range []string{"proposal", "text", "content"} {
		if v, ok := obj[field].(string); ok {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: element has no proposal text", ErrMalformedVariants)
}
