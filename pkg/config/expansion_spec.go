package config

import "strconv"

// Expansion declares how a single StreamTemplate fans out into many
// ResolvedStreams, substituting Var into the template's Topic and every
// string-valued field of its Payload (including nested json_fields
// generator strings).
type Expansion struct {
	Var   string      `json:"var"`
	Range *RangeSpec  `json:"range,omitempty"`
	List  []string    `json:"list,omitempty"`
}

// RangeSpec describes an inclusive integer range, stepped by Step (default 1).
type RangeSpec struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
	Step  int64 `json:"step,omitempty"`
}

// Values materializes the expansion's substitution values in order: the
// Range values if Range is set, otherwise the List values. Exactly one
// of Range/List is expected to be set; Validator enforces that.
func (e *Expansion) Values() []string {
	if e == nil {
		return nil
	}
	if e.Range != nil {
		return e.Range.values()
	}
	return e.List
}

func (r *RangeSpec) values() []string {
	step := r.Step
	if step == 0 {
		step = 1
	}
	var out []string
	if step > 0 {
		for v := r.Start; v <= r.End; v += step {
			out = append(out, strconv.FormatInt(v, 10))
		}
	} else {
		for v := r.Start; v >= r.End; v += step {
			out = append(out, strconv.FormatInt(v, 10))
		}
	}
	return out
}
