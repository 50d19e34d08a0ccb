// Package payload builds the wire bytes published on each tick of a
// stream, one config.PayloadBuilder implementation per config.PayloadKind.
// file and pickle_file builders intentionally re-read their source file on
// every Build call rather than caching it, so editing the file on disk
// changes what gets published on the next tick.
package payload

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/marcelo-6/mqtt-sim/pkg/config"
	"github.com/marcelo-6/mqtt-sim/pkg/errs"
	"github.com/marcelo-6/mqtt-sim/pkg/generator"
	"github.com/marcelo-6/mqtt-sim/pkg/rng"
)

// New builds the config.PayloadBuilder for spec.
func New(spec config.PayloadSpec, src *rng.Source) (config.PayloadBuilder, error) {
	switch spec.Kind {
	case config.PayloadText:
		return &textBuilder{text: spec.Text}, nil
	case config.PayloadBytes:
		return newBytesBuilder(spec)
	case config.PayloadFile:
		return &fileBuilder{path: spec.Path}, nil
	case config.PayloadPickleFile:
		return &pickleFileBuilder{path: spec.Path}, nil
	case config.PayloadSequence:
		if len(spec.Items) == 0 {
			return nil, &errs.PayloadError{Kind: string(spec.Kind), Err: fmt.Errorf("no items configured")}
		}
		return &sequenceBuilder{items: spec.Items, encoding: spec.SeqEncode, loop: spec.Loop}, nil
	case config.PayloadJSONFields:
		return newJSONFieldsBuilder(spec, src)
	default:
		return nil, &errs.PayloadError{Kind: string(spec.Kind), Err: fmt.Errorf("unknown payload kind")}
	}
}

type textBuilder struct {
	text string
}

func (b *textBuilder) Build(ctx context.Context) ([]byte, error) {
	return []byte(b.text), nil
}

type bytesBuilder struct {
	decoded []byte
}

func newBytesBuilder(spec config.PayloadSpec) (*bytesBuilder, error) {
	var decoded []byte
	var err error
	switch spec.Encoding {
	case config.EncodingHex:
		decoded, err = hex.DecodeString(spec.Data)
	case config.EncodingBase64:
		decoded, err = base64.StdEncoding.DecodeString(spec.Data)
	default:
		decoded = []byte(spec.Data)
	}
	if err != nil {
		return nil, &errs.PayloadError{Kind: string(spec.Kind), Err: fmt.Errorf("decode %s data: %w", spec.Encoding, err)}
	}
	return &bytesBuilder{decoded: decoded}, nil
}

func (b *bytesBuilder) Build(ctx context.Context) ([]byte, error) {
	return b.decoded, nil
}

type fileBuilder struct {
	path string
}

func (b *fileBuilder) Build(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, &errs.PayloadError{Kind: "file", Err: fmt.Errorf("read %s: %w", b.path, err)}
	}
	return data, nil
}

// picklePreviewFormat is the placeholder mqttsim publishes for pickle_file
// payloads: it reads and re-reads the source file's bytes on every publish
// but never parses Python pickle framing, only reports its size.
const picklePreviewFormat = "<pickle %d>"

type pickleFileBuilder struct {
	path string
}

func (b *pickleFileBuilder) Build(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, &errs.PayloadError{Kind: "pickle_file", Err: fmt.Errorf("read %s: %w", b.path, err)}
	}
	return []byte(fmt.Sprintf(picklePreviewFormat, len(data))), nil
}

// sequenceBuilder returns items[i], incrementing i on each call; once i
// reaches the end, it wraps to 0 when loop is set, otherwise clamps at the
// last item.
type sequenceBuilder struct {
	items    []string
	encoding config.SequenceEncoding
	loop     bool
	idx      int
}

func (b *sequenceBuilder) Build(ctx context.Context) ([]byte, error) {
	var item string
	if b.idx >= len(b.items) {
		if !b.loop {
			item = b.items[len(b.items)-1]
		} else {
			b.idx = 0
			item = b.items[b.idx]
			b.idx++
		}
	} else {
		item = b.items[b.idx]
		b.idx++
	}

	if b.encoding == config.SequenceJSON {
		encoded, err := json.Marshal(item)
		if err != nil {
			return nil, &errs.PayloadError{Kind: "sequence", Err: fmt.Errorf("encode item: %w", err)}
		}
		return encoded, nil
	}
	return []byte(item), nil
}

type jsonFieldsBuilder struct {
	order      []string
	generators map[string]generator.Generator
}

func newJSONFieldsBuilder(spec config.PayloadSpec, src *rng.Source) (*jsonFieldsBuilder, error) {
	gens := make(map[string]generator.Generator, len(spec.Fields))
	for name, genSpec := range spec.Fields {
		gen, err := generator.New(genSpec, src)
		if err != nil {
			return nil, &errs.PayloadError{Kind: "json_fields", Err: fmt.Errorf("field %s: %w", name, err)}
		}
		gens[name] = gen
	}
	return &jsonFieldsBuilder{order: spec.FieldOrder, generators: gens}, nil
}

// Build renders each configured field in its source declaration order, so
// the emitted JSON object's key order is stable across publishes even
// though Go map iteration is not.
func (b *jsonFieldsBuilder) Build(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range b.order {
		gen := b.generators[name]
		value, err := gen.Next()
		if err != nil {
			return nil, &errs.PayloadError{Kind: "json_fields", Err: fmt.Errorf("field %s: %w", name, err)}
		}

		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(name)
		if err != nil {
			return nil, &errs.PayloadError{Kind: "json_fields", Err: err}
		}
		valBytes, err := json.Marshal(value)
		if err != nil {
			return nil, &errs.PayloadError{Kind: "json_fields", Err: fmt.Errorf("field %s: %w", name, err)}
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
