package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadSpec_UnmarshalJSON_PreservesFieldOrder(t *testing.T) {
	doc := []byte(`{
		"kind": "json_fields",
		"fields": {
			"zeta": {"kind": "const", "value": 1},
			"alpha": {"kind": "const", "value": 2},
			"mid": {"kind": "const", "value": 3}
		}
	}`)

	var spec PayloadSpec
	require.NoError(t, json.Unmarshal(doc, &spec))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, spec.FieldOrder)
	assert.Len(t, spec.Fields, 3)
}

func TestPayloadSpec_UnmarshalJSON_NonJSONFieldsIgnoresOrder(t *testing.T) {
	doc := []byte(`{"kind": "text", "text": "hello"}`)

	var spec PayloadSpec
	require.NoError(t, json.Unmarshal(doc, &spec))

	assert.Equal(t, "hello", spec.Text)
	assert.Nil(t, spec.FieldOrder)
}
