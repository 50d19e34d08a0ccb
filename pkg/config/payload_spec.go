package config

// PayloadKind identifies which payload builder a PayloadSpec describes.
type PayloadKind string

// Payload kinds, per spec §4.4.
const (
	PayloadText       PayloadKind = "text"
	PayloadBytes      PayloadKind = "bytes"
	PayloadFile       PayloadKind = "file"
	PayloadPickleFile PayloadKind = "pickle_file"
	PayloadSequence   PayloadKind = "sequence"
	PayloadJSONFields PayloadKind = "json_fields"
)

// BytesEncoding is the encoding used to decode PayloadSpec.Data for kind bytes.
type BytesEncoding string

// Supported bytes encodings.
const (
	EncodingUTF8   BytesEncoding = "utf8"
	EncodingHex    BytesEncoding = "hex"
	EncodingBase64 BytesEncoding = "base64"
)

// SequenceEncoding is how a sequence payload's successive elements are
// rendered onto the wire.
type SequenceEncoding string

// Supported sequence encodings.
const (
	SequenceText SequenceEncoding = "text"
	SequenceJSON SequenceEncoding = "json"
)

// PayloadSpec is the flat, kind-tagged declaration of one payload builder.
type PayloadSpec struct {
	Kind PayloadKind `json:"kind"`

	// text
	Text string `json:"text,omitempty"`

	// bytes
	Data     string        `json:"data,omitempty"`
	Encoding BytesEncoding `json:"encoding,omitempty"`

	// file / pickle_file: path resolved relative to the config file's
	// directory at load time
	Path string `json:"path,omitempty"`

	// sequence: returns Items[i], incrementing i; past the end, wraps to 0
	// if Loop else clamps at the last item
	Items     []string         `json:"items,omitempty"`
	SeqEncode SequenceEncoding `json:"encoding_seq,omitempty"`
	Loop      bool             `json:"loop,omitempty"`

	// json_fields: ordered field name -> generator. For a JSON config the
	// field order in the source document is preserved in FieldOrder for
	// stable JSON output; a YAML config is re-encoded through a Go map
	// first, so its FieldOrder is sorted by field name.
	Fields     map[string]GeneratorSpec `json:"fields,omitempty"`
	FieldOrder []string                 `json:"-"`
}
