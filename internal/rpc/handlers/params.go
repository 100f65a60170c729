package handlers

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidParams marks request parameter errors so the transport can map
// them to the right JSON-RPC error code.
var ErrInvalidParams = errors.New("invalid params")

// ErrJournalDisabled is returned by methods that need the durable journal
// when the daemon runs without one.
var ErrJournalDisabled = errors.New("journal is not enabled")

// StringParam extracts a required non-empty string parameter.
func StringParam(params map[string]interface{}, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrInvalidParams, key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %q must be a non-empty string", ErrInvalidParams, key)
	}
	return s, nil
}

// OptionalStringParam extracts a string parameter, empty when absent.
func OptionalStringParam(params map[string]interface{}, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string", ErrInvalidParams, key)
	}
	return s, nil
}

// AmountParam extracts a big integer carried as a decimal string. Amounts
// ride as strings because JSON numbers cannot hold 256-bit values.
func AmountParam(params map[string]interface{}, key string) (*big.Int, error) {
	s, err := StringParam(params, key)
	if err != nil {
		return nil, err
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal integer", ErrInvalidParams, key)
	}
	return v, nil
}

// IntParam extracts an optional integer parameter with a default. JSON
// decoding delivers numbers as float64.
func IntParam(params map[string]interface{}, key string, def int) (int, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	f, ok := raw.(float64)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("%w: %q must be an integer", ErrInvalidParams, key)
	}
	return int(f), nil
}

// Uint8Param extracts a required small integer parameter.
func Uint8Param(params map[string]interface{}, key string) (uint8, error) {
	if _, ok := params[key]; !ok {
		return 0, fmt.Errorf("%w: missing %q", ErrInvalidParams, key)
	}
	n, err := IntParam(params, key, 0)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("%w: %q must be between 0 and 255", ErrInvalidParams, key)
	}
	return uint8(n), nil
}
