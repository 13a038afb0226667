package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxKeyPoints bounds the key points kept from one reply.
const maxKeyPoints = 3

// reply is a decoded model answer.
type reply struct {
	Leave      bool
	Confidence *float64 // nil when the model gave none
	Reason     string
	KeyPoints  []string
}

var errNoJSONObject = errors.New("reply contains no JSON object")

// extractJSONObject returns the first JSON object in text. Prose before
// and after the object is ignored.
func extractJSONObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj != nil {
		return obj, nil
	}

	for i := strings.IndexByte(text, '{'); i >= 0; {
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		obj = nil
		if err := dec.Decode(&obj); err == nil && obj != nil {
			return obj, nil
		}
		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, errNoJSONObject
}

// parseReply decodes the model's answer fields.
func parseReply(text string) (reply, error) {
	obj, err := extractJSONObject(text)
	if err != nil {
		return reply{}, err
	}

	var r reply
	if r.Leave, err = asBool(obj["leave"]); err != nil {
		return reply{}, fmt.Errorf("leave: %w", err)
	}
	if raw, ok := obj["confidence_red"]; ok && raw != nil {
		c, err := asFloat(raw)
		if err != nil {
			return reply{}, fmt.Errorf("confidence_red: %w", err)
		}
		c = min(max(c, 0), 1)
		r.Confidence = &c
	}

	r.Reason = asString(obj["public_reason"])
	if r.Reason == "" {
		r.Reason = asString(obj["reason"])
	}

	if items, ok := obj["key_points"].([]any); ok {
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				r.KeyPoints = append(r.KeyPoints, s)
			}
			if len(r.KeyPoints) == maxKeyPoints {
				break
			}
		}
	}
	return r, nil
}

func asBool(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fmt.Errorf("not a boolean: %q", x)
		}
		return b, nil
	default:
		return false, fmt.Errorf("unexpected type %T", v)
	}
}

func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
