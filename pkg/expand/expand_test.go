package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelo-6/mqtt-sim/pkg/config"
)

func TestExpand_NoExpansionProducesOneStream(t *testing.T) {
	plan := &config.Plan{
		Streams: []config.StreamTemplate{
			{Broker: "b", Topic: "t/fixed", Interval: 1, Payload: config.PayloadSpec{Kind: config.PayloadText, Text: "hi"}},
		},
	}

	resolved, err := Expand(plan)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "t/fixed", resolved[0].Topic)
}

func TestExpand_RangeExpandsTopicAndText(t *testing.T) {
	plan := &config.Plan{
		Streams: []config.StreamTemplate{
			{
				Broker:   "b",
				Topic:    "sensors/{n}/temp",
				Interval: 1,
				Payload:  config.PayloadSpec{Kind: config.PayloadText, Text: "sensor {n} reading"},
				Expand:   &config.Expansion{Var: "n", Range: &config.RangeSpec{Start: 1, End: 3}},
			},
		},
	}

	resolved, err := Expand(plan)
	require.NoError(t, err)
	require.Len(t, resolved, 3)

	assert.Equal(t, "sensors/1/temp", resolved[0].Topic)
	assert.Equal(t, "sensor 1 reading", resolved[0].Payload.Text)
	assert.Equal(t, "sensors/3/temp", resolved[2].Topic)
}

func TestExpand_ListExpansion(t *testing.T) {
	plan := &config.Plan{
		Streams: []config.StreamTemplate{
			{
				Broker:   "b",
				Topic:    "rooms/{room}/temp",
				Interval: 1,
				Payload:  config.PayloadSpec{Kind: config.PayloadText, Text: "x"},
				Expand:   &config.Expansion{Var: "room", List: []string{"kitchen", "hall"}},
			},
		},
	}

	resolved, err := Expand(plan)
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, "rooms/kitchen/temp", resolved[0].Topic)
	assert.Equal(t, "rooms/hall/temp", resolved[1].Topic)
}

func TestExpand_MissingVariableErrors(t *testing.T) {
	plan := &config.Plan{
		Streams: []config.StreamTemplate{
			{Broker: "b", Topic: "sensors/{missing}/temp", Interval: 1, Payload: config.PayloadSpec{Kind: config.PayloadText}},
		},
	}

	_, err := Expand(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Missing template variable 'missing' in stream template.`)
}

func TestExpand_EscapedBracesAreLiteral(t *testing.T) {
	plan := &config.Plan{
		Streams: []config.StreamTemplate{
			{Broker: "b", Topic: "literal/{{not-a-var}}", Interval: 1, Payload: config.PayloadSpec{Kind: config.PayloadText}},
		},
	}

	resolved, err := Expand(plan)
	require.NoError(t, err)
	assert.Equal(t, "literal/{not-a-var}", resolved[0].Topic)
}

func TestExpand_JSONFieldsExpressionSubstitution(t *testing.T) {
	plan := &config.Plan{
		Streams: []config.StreamTemplate{
			{
				Broker:   "b",
				Topic:    "t",
				Interval: 1,
				Payload: config.PayloadSpec{
					Kind: config.PayloadJSONFields,
					Fields: map[string]config.GeneratorSpec{
						"id": {Kind: config.GenExpression, Expression: "count + {n}"},
					},
					FieldOrder: []string{"id"},
				},
				Expand: &config.Expansion{Var: "n", Range: &config.RangeSpec{Start: 1, End: 1}},
			},
		},
	}

	resolved, err := Expand(plan)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "count + 1", resolved[0].Payload.Fields["id"].Expression)
}
