package config

import (
	"fmt"
	"strings"
)

// ValidationErrors aggregates every path-qualified semantic error found
// while validating a Plan. Error reports the first one found; the full list
// is available in Errors.
type ValidationErrors struct {
	Errors []ConfigFieldError
}

// ConfigFieldError is one path-qualified validation failure.
type ConfigFieldError struct {
	Path    string
	Message string
}

func (e ConfigFieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// AddError records a new validation failure.
func (r *ValidationErrors) AddError(path, message string) {
	r.Errors = append(r.Errors, ConfigFieldError{Path: path, Message: message})
}

// Merge appends other's errors onto r, if other is non-nil and non-empty.
func (r *ValidationErrors) Merge(other *ValidationErrors) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
}

// HasErrors reports whether any validation failure was recorded.
func (r *ValidationErrors) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

func (r *ValidationErrors) Error() string {
	if r == nil || len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Error()
}

// asError returns r as an error interface, or nil if it carries no errors -
// so callers can `return errs.asError()` without an extra nil check.
func (r *ValidationErrors) asError() error {
	if !r.HasErrors() {
		return nil
	}
	return r
}

// Validator performs the semantic validation pass that the structural
// schema (schema.go) cannot express: cross-references between brokers and
// streams, numeric ordering invariants, and closed kind-tag checks.
type Validator struct{}

// NewValidator constructs a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks plan for every semantic invariant and returns an
// aggregated *ValidationErrors if any are violated.
func (v *Validator) Validate(plan *Plan) error {
	errs := &ValidationErrors{}

	if plan.SchemaVersion != SchemaVersion {
		errs.AddError("schema_version", fmt.Sprintf("unsupported schema_version %d, expected %d", plan.SchemaVersion, SchemaVersion))
	}

	if len(plan.Brokers) == 0 {
		errs.AddError("brokers", "at least one broker is required")
	}
	if len(plan.Streams) == 0 {
		errs.AddError("streams", "at least one stream is required")
	}

	brokerNames := make(map[string]bool, len(plan.Brokers))
	for i, b := range plan.Brokers {
		path := fmt.Sprintf("brokers[%d]", i)
		v.validateBroker(b, path, brokerNames, errs)
	}

	streamNames := make(map[string]bool, len(plan.Streams))
	for i, s := range plan.Streams {
		path := fmt.Sprintf("streams[%d]", i)
		v.validateStream(s, path, brokerNames, streamNames, errs)
	}

	return errs.asError()
}

func (v *Validator) validateBroker(b BrokerSpec, path string, names map[string]bool, errs *ValidationErrors) {
	if b.Name == "" {
		errs.AddError(path+".name", "required")
	} else if names[b.Name] {
		errs.AddError(path+".name", fmt.Sprintf("duplicate broker name %q", b.Name))
	} else {
		names[b.Name] = true
	}
	if b.Host == "" {
		errs.AddError(path+".host", "required")
	}
	if b.Port != 0 && (b.Port < 1 || b.Port > 65535) {
		errs.AddError(path+".port", fmt.Sprintf("invalid port %d, must be 1-65535", b.Port))
	}
}

func (v *Validator) validateStream(s StreamTemplate, path string, brokerNames, streamNames map[string]bool, errs *ValidationErrors) {
	if s.Name != "" {
		if streamNames[s.Name] {
			errs.AddError(path+".name", fmt.Sprintf("duplicate stream name %q", s.Name))
		}
		streamNames[s.Name] = true
	}

	if s.Broker == "" {
		errs.AddError(path+".broker", "required")
	} else if !brokerNames[s.Broker] {
		errs.AddError(path+".broker", fmt.Sprintf("references unknown broker %q", s.Broker))
	}

	if s.Topic == "" {
		errs.AddError(path+".topic", "required")
	}
	if s.Interval <= 0 {
		errs.AddError(path+".interval", "must be greater than 0")
	}
	if s.QoS < 0 || s.QoS > 2 {
		errs.AddError(path+".qos", fmt.Sprintf("invalid qos %d, must be 0, 1, or 2", s.QoS))
	}

	v.validatePayload(s.Payload, path+".payload", errs)

	if s.Expand != nil {
		v.validateExpansion(s.Expand, path+".expand", errs)
	}
}

func (v *Validator) validateExpansion(e *Expansion, path string, errs *ValidationErrors) {
	if e.Var == "" {
		errs.AddError(path+".var", "required")
	}
	hasRange := e.Range != nil
	hasList := len(e.List) > 0
	switch {
	case hasRange && hasList:
		errs.AddError(path, "exactly one of range or list may be set, not both")
	case !hasRange && !hasList:
		errs.AddError(path, "one of range or list is required")
	case hasRange:
		if e.Range.Step == 0 && e.Range.End < e.Range.Start {
			errs.AddError(path+".range", "end must be >= start when step is omitted")
		}
	}
}

func (v *Validator) validatePayload(p PayloadSpec, path string, errs *ValidationErrors) {
	switch p.Kind {
	case PayloadText:
		// text has no required fields beyond Text itself, which may be empty
	case PayloadBytes:
		if p.Data == "" {
			errs.AddError(path+".data", "required for kind bytes")
		}
		switch p.Encoding {
		case EncodingUTF8, EncodingHex, EncodingBase64:
		default:
			errs.AddError(path+".encoding", fmt.Sprintf("invalid encoding %q, must be utf8, hex, or base64", p.Encoding))
		}
	case PayloadFile, PayloadPickleFile:
		if p.Path == "" {
			errs.AddError(path+".path", "required")
		}
	case PayloadSequence:
		if len(p.Items) == 0 {
			errs.AddError(path+".items", "required for kind sequence")
		}
		switch p.SeqEncode {
		case SequenceText, SequenceJSON, "":
		default:
			errs.AddError(path+".encoding_seq", fmt.Sprintf("invalid encoding %q, must be text or json", p.SeqEncode))
		}
	case PayloadJSONFields:
		if len(p.Fields) == 0 {
			errs.AddError(path+".fields", "required for kind json_fields")
		}
		for _, name := range p.FieldOrder {
			gen := p.Fields[name]
			v.validateGenerator(gen, fmt.Sprintf("%s.fields.%s", path, name), errs)
		}
	default:
		errs.AddError(path+".kind", fmt.Sprintf("unknown payload kind %q", p.Kind))
	}
}

func (v *Validator) validateGenerator(g GeneratorSpec, path string, errs *ValidationErrors) {
	switch g.Kind {
	case GenConst:
		if g.Value == nil {
			errs.AddError(path+".value", "required for kind const")
		}
	case GenBoolToggle:
		// Initial defaults to false; nothing further required.
	case GenNumberWalk:
		if g.Max < g.Min {
			errs.AddError(path, fmt.Sprintf("max (%v) must be >= min (%v)", g.Max, g.Min))
		}
		if g.Step == 0 {
			errs.AddError(path+".step", "required and non-zero for kind number_walk")
		}
	case GenNumberRand:
		if g.Max < g.Min {
			errs.AddError(path, fmt.Sprintf("max (%v) must be >= min (%v)", g.Max, g.Min))
		}
	case GenChoice:
		if len(g.Choices) == 0 {
			errs.AddError(path+".choices", "required for kind choice")
		}
	case GenSequence:
		if len(g.Values) == 0 {
			errs.AddError(path+".values", "required and non-empty for kind sequence")
		}
	case GenExpression:
		if strings.TrimSpace(g.Expression) == "" {
			errs.AddError(path+".expression", "required for kind expression")
		}
	case GenTimestamp:
		switch g.TimestampMode {
		case "", "iso", "unix":
		default:
			errs.AddError(path+".mode", fmt.Sprintf("invalid mode %q, must be iso or unix", g.TimestampMode))
		}
	case GenUUID:
		// No required fields.
	default:
		errs.AddError(path+".kind", fmt.Sprintf("unknown generator kind %q", g.Kind))
	}
}
