package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes a PayloadSpec, additionally recording the source
// order of a json_fields payload's Fields so that the json_fields payload
// builder can reproduce it on the wire instead of Go's randomized map order.
func (p *PayloadSpec) UnmarshalJSON(data []byte) error {
	type plain PayloadSpec // avoid recursing back into this method
	var alias plain
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*p = PayloadSpec(alias)

	if p.Kind != PayloadJSONFields {
		return nil
	}

	var envelope struct {
		Fields json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if len(envelope.Fields) == 0 {
		return nil
	}

	order, err := objectKeyOrder(envelope.Fields)
	if err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	p.FieldOrder = order
	return nil
}

// objectKeyOrder walks a JSON object literal and returns its top-level key
// names in source order.
func objectKeyOrder(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", tok)
		}
		keys = append(keys, key)

		// Skip the value: decode it into a json.RawMessage sink.
		var sink json.RawMessage
		if err := dec.Decode(&sink); err != nil {
			return nil, err
		}
	}
	return keys, nil
}
