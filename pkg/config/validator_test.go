package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlan() *Plan {
	return &Plan{
		SchemaVersion: SchemaVersion,
		Brokers: []BrokerSpec{
			{Name: "local", Host: "localhost", Port: 1883},
		},
		Streams: []StreamTemplate{
			{
				Broker:   "local",
				Topic:    "sensors/temp",
				Interval: 1.0,
				QoS:      0,
				Payload:  PayloadSpec{Kind: PayloadText, Text: "hello"},
			},
		},
	}
}

func TestValidator_ValidPlan(t *testing.T) {
	err := NewValidator().Validate(validPlan())
	assert.NoError(t, err)
}

func TestValidator_UnknownBrokerReference(t *testing.T) {
	plan := validPlan()
	plan.Streams[0].Broker = "missing"

	err := NewValidator().Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references unknown broker")
}

func TestValidator_DuplicateBrokerName(t *testing.T) {
	plan := validPlan()
	plan.Brokers = append(plan.Brokers, BrokerSpec{Name: "local", Host: "otherhost"})

	err := NewValidator().Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate broker name")
}

func TestValidator_NonPositiveInterval(t *testing.T) {
	plan := validPlan()
	plan.Streams[0].Interval = 0

	err := NewValidator().Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be greater than 0")
}

func TestValidator_InvalidQoS(t *testing.T) {
	plan := validPlan()
	plan.Streams[0].QoS = 3

	err := NewValidator().Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid qos")
}

func TestValidator_NumberWalkMinMax(t *testing.T) {
	plan := validPlan()
	plan.Streams[0].Payload = PayloadSpec{
		Kind: PayloadJSONFields,
		Fields: map[string]GeneratorSpec{
			"temp": {Kind: GenNumberWalk, Min: 10, Max: 5, Step: 1},
		},
		FieldOrder: []string{"temp"},
	}

	err := NewValidator().Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be >= min")
}

func TestValidator_WrongSchemaVersion(t *testing.T) {
	plan := validPlan()
	plan.SchemaVersion = 2

	err := NewValidator().Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema_version")
}

func TestValidator_ExpansionRequiresExactlyOneSource(t *testing.T) {
	plan := validPlan()
	plan.Streams[0].Expand = &Expansion{Var: "n"}

	err := NewValidator().Validate(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of range or list is required")
}
