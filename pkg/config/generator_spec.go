package config

// GeneratorKind identifies which value generator a GeneratorSpec describes.
type GeneratorKind string

// Generator kinds, per spec §4.3.
const (
	GenConst      GeneratorKind = "const"
	GenBoolToggle GeneratorKind = "bool_toggle"
	GenNumberWalk GeneratorKind = "number_walk"
	GenNumberRand GeneratorKind = "number_random"
	GenChoice     GeneratorKind = "choice"
	GenSequence   GeneratorKind = "sequence"
	GenExpression GeneratorKind = "expression"
	GenTimestamp  GeneratorKind = "timestamp"
	GenUUID       GeneratorKind = "uuid"
)

// GeneratorSpec is the flat, kind-tagged declaration of one value generator.
// Only the fields relevant to Kind are populated; the rest are the zero
// value. Fields outside the spec's kind are not checked: Validator.Validate
// does not reject them, and the generator ignores them.
type GeneratorSpec struct {
	Kind GeneratorKind `json:"kind"`

	// const
	Value any `json:"value,omitempty"`

	// bool_toggle: initial value before the first toggle
	Initial bool `json:"initial,omitempty"`

	// number_walk / number_random
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Step float64 `json:"step,omitempty"` // number_walk only

	// number_walk: value the walk starts at; defaults to Min when nil
	Start *float64 `json:"start,omitempty"`

	// number_random / number_walk: render as integer rather than float
	Integer bool `json:"integer,omitempty"`

	// choice
	Choices []any `json:"choices,omitempty"`

	// sequence: returns Values[i], incrementing i; past the end, wraps to 0
	// if Loop else clamps at the last value
	Values []any `json:"values,omitempty"`
	Loop   bool  `json:"loop,omitempty"`

	// expression: an expr-lang expression over prev, count, random,
	// randint, uniform, time, math
	Expression string `json:"expression,omitempty"`

	// timestamp: "iso" (RFC3339 UTC string) or "unix" (seconds as float)
	TimestampMode string `json:"mode,omitempty"`
}
