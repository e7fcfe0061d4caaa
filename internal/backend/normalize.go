package backend

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one row returned by the backend with lower-cased column names.
type Record map[string]any

// Normalize flattens the envelopes the backend answers with into records.
// Precedence:
//  1. {"data": [...]}
//  2. {"data": {...}}
//  3. [...]
//  4. {...} (non-empty)
//
// An object whose data key holds anything else, null, or an empty body
// yields no records. A bare object made only of status keys (message, error,
// ...) is a notice, not a record. Non-object array elements are skipped.
func Normalize(raw []byte) []Record {
	return normalize(raw, true)
}

// NormalizeProfile is Normalize without the bare-object fallback: profile
// endpoints must answer with a data envelope or an array.
func NormalizeProfile(raw []byte) []Record {
	return normalize(raw, false)
}

func normalize(raw []byte, bareObject bool) []Record {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	switch v := payload.(type) {
	case map[string]any:
		if data, ok := v["data"]; ok {
			switch d := data.(type) {
			case []any:
				return fromArray(d)
			case map[string]any:
				return fromObject(d)
			default:
				return nil
			}
		}
		if !bareObject || isNotice(v) {
			return nil
		}
		return fromObject(v)
	case []any:
		return fromArray(v)
	default:
		return nil
	}
}

var noticeKeys = map[string]bool{
	"message": true,
	"error":   true,
	"status":  true,
	"success": true,
	"code":    true,
}

func isNotice(obj map[string]any) bool {
	if len(obj) == 0 {
		return false
	}
	for k := range obj {
		if !noticeKeys[strings.ToLower(k)] {
			return false
		}
	}
	return true
}

func fromArray(items []any) []Record {
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, lowerKeys(obj))
		}
	}
	return out
}

func fromObject(obj map[string]any) []Record {
	if len(obj) == 0 {
		return nil
	}
	return []Record{lowerKeys(obj)}
}

func lowerKeys(obj map[string]any) Record {
	rec := make(Record, len(obj))
	for k, v := range obj {
		rec[strings.ToLower(k)] = v
	}
	return rec
}

// First returns the first non-empty record.
func First(records []Record) (Record, bool) {
	for _, rec := range records {
		if len(rec) > 0 {
			return rec, true
		}
	}
	return nil, false
}

// String returns the value at key rendered as a string, "" when absent.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Float returns the numeric value at key. Numeric strings are parsed; anything else is 0.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Has reports whether key is present with a non-null value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}
