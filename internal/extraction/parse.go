package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"notaria/internal/domain"
	"notaria/internal/provider"
)

var errNoJSONObject = errors.New("no JSON object found in response")

// defaultConfidence applies when the provider returns a value without a score.
const defaultConfidence = 0.7

// rawField is one entry of the structured payload.
type rawField struct {
	Value      *string
	Confidence float64
	Source     string
	Ambiguous  bool
}

// payload is the decoded provider answer. Missing fields are recomputed
// from the data, so the provider's own "missing" list is not kept.
type payload struct {
	Fields      map[string]rawField
	Suggestions []string
	// Rejected lists keys whose value was not a scalar. They are kept out of
	// Fields so the rest of the answer survives.
	Rejected []string
}

// firstJSONObject returns the first balanced {...} span of s. Braces inside
// JSON strings are ignored.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		depth := 0
		inString, escaped := false, false
		for i := start; i < len(s); i++ {
			c := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
		// unbalanced from this brace; try the next one
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// parsePayload decodes a provider response. Both the documented
// {"fields":{...}} contract and a flat {"id":"value"} object are accepted.
func parsePayload(raw string) (*payload, error) {
	span, ok := firstJSONObject(provider.StripCodeFences(raw))
	if !ok {
		return nil, &domain.ParseError{Raw: raw, Err: errNoJSONObject}
	}

	var top map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader([]byte(span)))
	dec.UseNumber()
	if err := dec.Decode(&top); err != nil {
		return nil, &domain.ParseError{Raw: raw, Err: err}
	}

	p := &payload{Fields: make(map[string]rawField)}
	if v, ok := top["suggestions"]; ok {
		if err := json.Unmarshal(v, &p.Suggestions); err != nil {
			p.Suggestions = nil
		}
	}

	fields := top
	if nested, ok := top["fields"]; ok {
		fields = nil
		if err := json.Unmarshal(nested, &fields); err != nil {
			return nil, &domain.ParseError{Raw: raw, Err: fmt.Errorf("fields: %w", err)}
		}
	} else {
		delete(fields, "missing")
		delete(fields, "suggestions")
	}

	for key, msg := range fields {
		f, err := decodeField(msg)
		if err != nil {
			log.Printf("extraction.parsePayload: dropping field %s: %v", key, err)
			p.Rejected = append(p.Rejected, key)
			continue
		}
		p.Fields[key] = f
	}
	sort.Strings(p.Rejected)
	return p, nil
}

func decodeField(msg json.RawMessage) (rawField, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Value      json.RawMessage `json:"value"`
			Confidence *float64        `json:"confidence"`
			Source     string          `json:"source"`
			Ambiguous  bool            `json:"ambiguous"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return rawField{}, err
		}
		value, err := scalarString(obj.Value)
		if err != nil {
			return rawField{}, err
		}
		f := rawField{Value: value, Source: obj.Source, Ambiguous: obj.Ambiguous}
		switch {
		case obj.Confidence != nil:
			f.Confidence = *obj.Confidence
		case value != nil:
			f.Confidence = defaultConfidence
		}
		return f, nil
	}

	value, err := scalarString(trimmed)
	if err != nil {
		return rawField{}, err
	}
	f := rawField{Value: value}
	if value != nil {
		f.Confidence = defaultConfidence
	}
	return f, nil
}

// scalarString renders a JSON scalar as text; null and blank become nil.
func scalarString(msg json.RawMessage) (*string, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var s string
	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
	case '{', '[':
		return nil, fmt.Errorf("expected a scalar value")
	default:
		s = string(trimmed)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	return &s, nil
}
