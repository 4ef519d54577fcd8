package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// OracleItem is one unresolved food sent for estimation.
type OracleItem struct {
	Name  string  `json:"name"`
	Grams float64 `json:"grams"`
}

// OracleEstimate is one item of an oracle reply. Grams is zero when the
// oracle did not report a weight.
type OracleEstimate struct {
	Name    string
	Protein float64
	Carb    float64
	Fat     float64
	Grams   float64
}

// OracleReply is either an error passthrough or the estimated items in the
// order the oracle listed them.
type OracleReply struct {
	Error string
	Items []OracleEstimate
}

// Oracle estimates macros for foods the catalog does not know.
type Oracle interface {
	EstimateMacros(ctx context.Context, items []OracleItem) (*OracleReply, error)
}

// RunState is the terminal-or-not state of an oracle run.
type RunState int

const (
	RunPending RunState = iota
	RunSucceeded
	RunFailed
)

func (s RunState) String() string {
	switch s {
	case RunSucceeded:
		return "succeeded"
	case RunFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Accepted spellings per field; the assistant prompt has historically used
// Spanish keys.
var estimateFields = map[string][]string{
	"protein": {"protein", "proteins", "proteinas", "proteínas"},
	"carb":    {"carb", "carbs", "carbohydrates", "carbohidratos"},
	"fat":     {"fat", "fats", "grasas"},
	"grams":   {"grams", "gramos", "g"},
}

// stripFences removes a ```json ... ``` wrapper some models add around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseOracleReply decodes the oracle's JSON object keeping the key order,
// which is the order items are returned to the caller.
func ParseOracleReply(raw []byte) (*OracleReply, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(stripFences(string(raw)))))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("oracle reply: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("oracle reply: expected a JSON object")
	}

	reply := &OracleReply{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("oracle reply: %w", err)
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("oracle reply %q: %w", key, err)
		}

		if key == "error" {
			var msg string
			if err := json.Unmarshal(value, &msg); err != nil {
				msg = strings.TrimSpace(string(value))
			}
			return &OracleReply{Error: msg}, nil
		}

		est, err := decodeEstimate(key, value)
		if err != nil {
			return nil, err
		}
		reply.Items = append(reply.Items, est)
	}
	return reply, nil
}

func decodeEstimate(name string, value json.RawMessage) (OracleEstimate, error) {
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return OracleEstimate{}, fmt.Errorf("oracle item %q: %w", name, err)
	}

	// non-numeric fields such as a repeated name are ignored
	lower := make(map[string]json.Number, len(fields))
	for k, v := range fields {
		if n, ok := v.(json.Number); ok {
			lower[strings.ToLower(strings.TrimSpace(k))] = n
		}
	}
	pick := func(field string) (float64, bool, error) {
		for _, alias := range estimateFields[field] {
			if n, ok := lower[alias]; ok {
				f, err := n.Float64()
				if err != nil {
					return 0, false, fmt.Errorf("oracle item %q field %s: %w", name, alias, err)
				}
				return f, true, nil
			}
		}
		return 0, false, nil
	}

	est := OracleEstimate{Name: name}
	var err error
	for _, f := range []struct {
		field    string
		dst      *float64
		required bool
	}{
		{"protein", &est.Protein, true},
		{"carb", &est.Carb, true},
		{"fat", &est.Fat, true},
		{"grams", &est.Grams, false},
	} {
		var found bool
		*f.dst, found, err = pick(f.field)
		if err != nil {
			return OracleEstimate{}, err
		}
		if f.required && !found {
			return OracleEstimate{}, fmt.Errorf("oracle item %q: missing %s", name, f.field)
		}
		if *f.dst < 0 {
			return OracleEstimate{}, fmt.Errorf("oracle item %q: negative %s %v", name, f.field, *f.dst)
		}
	}
	return est, nil
}
