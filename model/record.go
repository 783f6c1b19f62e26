package model

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/validation"
)

// Record is the flat key/value form of an entity, as decoded from a JSON
// object or produced for storage and encoding.
type Record = map[string]interface{}

func recordString(rec Record, key string) (string, error) {
	v, ok := rec[key]
	if !ok {
		return "", fmt.Errorf("missing key %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key %q must be a string", key)
	}
	return s, nil
}

func recordInt(rec Record, key string) (int, error) {
	v, ok := rec[key]
	if !ok {
		return 0, fmt.Errorf("missing key %q", key)
	}
	return toInt(key, v)
}

// optionalInt returns ok=false when key is absent or null.
func optionalInt(rec Record, key string) (int, bool, error) {
	v, present := rec[key]
	if !present || v == nil {
		return 0, false, nil
	}
	n, err := toInt(key, v)
	return n, err == nil, err
}

func optionalString(rec Record, key string) (string, bool, error) {
	v, present := rec[key]
	if !present || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("key %q must be a string", key)
	}
	return s, true, nil
}

func toInt(key string, v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("key %q must be an integer", key)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("key %q must be an integer", key)
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("key %q must be an integer", key)
	}
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func check(v interface{}) error {
	return validation.Default().Check(v)
}

func malformed(kind string, cause error) error {
	return apperr.Malformed(
		fmt.Sprintf("Data must contain complete %s information, and formatted as dictionary object", kind),
		cause,
	)
}
