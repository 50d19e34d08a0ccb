// Package expand turns each config.StreamTemplate into one or more
// config.ResolvedStream values by materializing its Expansion (if any) and
// substituting {var} placeholders through the topic and every string field
// of its payload, including nested json_fields generator strings.
package expand

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/marcelo-6/mqtt-sim/pkg/config"
	"github.com/marcelo-6/mqtt-sim/pkg/errs"
)

// Expand resolves every stream template in plan into its concrete
// ResolvedStreams, in declaration order. A template with no Expand produces
// exactly one ResolvedStream.
func Expand(plan *config.Plan) ([]config.ResolvedStream, error) {
	var out []config.ResolvedStream
	for i, tmpl := range plan.Streams {
		resolved, err := expandOne(tmpl)
		if err != nil {
			return nil, &errs.ConfigError{Path: fmt.Sprintf("streams[%d]", i), Err: err}
		}
		out = append(out, resolved...)
	}
	return out, nil
}

func expandOne(tmpl config.StreamTemplate) ([]config.ResolvedStream, error) {
	if tmpl.Expand == nil {
		rs, err := buildStream(tmpl, nil)
		if err != nil {
			return nil, err
		}
		return []config.ResolvedStream{rs}, nil
	}

	values := tmpl.Expand.Values()
	if len(values) == 0 {
		return nil, fmt.Errorf("expand: no values produced for variable %q", tmpl.Expand.Var)
	}

	out := make([]config.ResolvedStream, 0, len(values))
	for _, val := range values {
		vars := map[string]string{tmpl.Expand.Var: val}
		rs, err := buildStream(tmpl, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, nil
}

func buildStream(tmpl config.StreamTemplate, vars map[string]string) (config.ResolvedStream, error) {
	topic, err := substitute(tmpl.Topic, vars)
	if err != nil {
		return config.ResolvedStream{}, fmt.Errorf("topic: %w", err)
	}

	payload, err := substitutePayload(tmpl.Payload, vars)
	if err != nil {
		return config.ResolvedStream{}, err
	}

	return config.ResolvedStream{
		ID:       uuid.NewString(),
		Broker:   tmpl.Broker,
		Topic:    topic,
		Interval: tmpl.IntervalDuration(),
		QoS:      tmpl.QoS,
		Retain:   tmpl.Retain,
		Payload:  payload,
		Vars:     vars,
		State:    &config.StreamRuntimeState{State: config.StatePending},
	}, nil
}

func substitutePayload(p config.PayloadSpec, vars map[string]string) (config.PayloadSpec, error) {
	out := p

	var err error
	if out.Text, err = substitute(p.Text, vars); err != nil {
		return out, fmt.Errorf("payload.text: %w", err)
	}
	if out.Data, err = substitute(p.Data, vars); err != nil {
		return out, fmt.Errorf("payload.data: %w", err)
	}
	if out.Path, err = substitute(p.Path, vars); err != nil {
		return out, fmt.Errorf("payload.path: %w", err)
	}

	if len(p.Items) > 0 {
		items := make([]string, len(p.Items))
		for i, item := range p.Items {
			items[i], err = substitute(item, vars)
			if err != nil {
				return out, fmt.Errorf("payload.items[%d]: %w", i, err)
			}
		}
		out.Items = items
	}

	if len(p.Fields) > 0 {
		fields := make(map[string]config.GeneratorSpec, len(p.Fields))
		for name, gen := range p.Fields {
			resolved, err := substituteGenerator(gen, vars)
			if err != nil {
				return out, fmt.Errorf("payload.fields.%s: %w", name, err)
			}
			fields[name] = resolved
		}
		out.Fields = fields
		out.FieldOrder = p.FieldOrder
	}

	return out, nil
}

func substituteGenerator(g config.GeneratorSpec, vars map[string]string) (config.GeneratorSpec, error) {
	out := g
	expr, err := substitute(g.Expression, vars)
	if err != nil {
		return out, fmt.Errorf("expression: %w", err)
	}
	out.Expression = expr

	if s, ok := g.Value.(string); ok {
		sub, err := substitute(s, vars)
		if err != nil {
			return out, fmt.Errorf("value: %w", err)
		}
		out.Value = sub
	}
	return out, nil
}

// substitute replaces every {name} occurrence in s with vars[name],
// treating {{ and }} as literal escaped braces. It returns an error naming
// any {name} reference that vars does not define.
func substitute(s string, vars map[string]string) (string, error) {
	if !strings.ContainsAny(s, "{}") {
		return s, nil
	}

	var b strings.Builder
	i := 0
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], "{{"):
			b.WriteByte('{')
			i += 2
		case strings.HasPrefix(s[i:], "}}"):
			b.WriteByte('}')
			i += 2
		case s[i] == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				b.WriteByte(s[i])
				i++
				continue
			}
			name := s[i+1 : i+end]
			val, ok := vars[name]
			if !ok {
				return "", fmt.Errorf("Missing template variable '%s' in stream template.", name)
			}
			b.WriteString(val)
			i += end + 1
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String(), nil
}
