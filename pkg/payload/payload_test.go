package payload

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelo-6/mqtt-sim/pkg/config"
	"github.com/marcelo-6/mqtt-sim/pkg/rng"
)

func TestTextBuilder(t *testing.T) {
	b, err := New(config.PayloadSpec{Kind: config.PayloadText, Text: "hello"}, rng.New(1))
	require.NoError(t, err)

	out, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestBytesBuilder_Base64(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("binary"))
	b, err := New(config.PayloadSpec{Kind: config.PayloadBytes, Data: encoded, Encoding: config.EncodingBase64}, rng.New(1))
	require.NoError(t, err)

	out, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "binary", string(out))
}

func TestBytesBuilder_Hex(t *testing.T) {
	b, err := New(config.PayloadSpec{Kind: config.PayloadBytes, Data: "68656c6c6f", Encoding: config.EncodingHex}, rng.New(1))
	require.NoError(t, err)

	out, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestBytesBuilder_InvalidHexErrors(t *testing.T) {
	_, err := New(config.PayloadSpec{Kind: config.PayloadBytes, Data: "zz", Encoding: config.EncodingHex}, rng.New(1))
	require.Error(t, err)
}

func TestFileBuilder_RereadsOnEveryBuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	b, err := New(config.PayloadSpec{Kind: config.PayloadFile, Path: path}, rng.New(1))
	require.NoError(t, err)

	first, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", string(first))

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	second, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2", string(second))
}

func TestPickleFileBuilder_PreviewsSizeWithoutParsing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.pkl")
	require.NoError(t, os.WriteFile(path, []byte{0x80, 0x04, 0x01, 0x02}, 0o644))

	b, err := New(config.PayloadSpec{Kind: config.PayloadPickleFile, Path: path}, rng.New(1))
	require.NoError(t, err)

	out, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<pickle 4>", string(out))
}

func TestSequenceBuilder_ClampsAtLastWhenNotLooping(t *testing.T) {
	b, err := New(config.PayloadSpec{Kind: config.PayloadSequence, Items: []string{"a", "b", "c"}}, rng.New(1))
	require.NoError(t, err)

	var got []string
	for i := 0; i < 5; i++ {
		out, err := b.Build(context.Background())
		require.NoError(t, err)
		got = append(got, string(out))
	}

	assert.Equal(t, []string{"a", "b", "c", "c", "c"}, got)
}

func TestSequenceBuilder_WrapsWhenLooping(t *testing.T) {
	b, err := New(config.PayloadSpec{Kind: config.PayloadSequence, Items: []string{"a", "b"}, Loop: true}, rng.New(1))
	require.NoError(t, err)

	first, _ := b.Build(context.Background())
	second, _ := b.Build(context.Background())
	third, _ := b.Build(context.Background())

	assert.Equal(t, "a", string(first))
	assert.Equal(t, "b", string(second))
	assert.Equal(t, "a", string(third))
}

func TestSequenceBuilder_NoItemsErrors(t *testing.T) {
	_, err := New(config.PayloadSpec{Kind: config.PayloadSequence}, rng.New(1))
	require.Error(t, err)
}

func TestSequenceBuilder_JSONEncoding(t *testing.T) {
	b, err := New(config.PayloadSpec{Kind: config.PayloadSequence, Items: []string{"a"}, SeqEncode: config.SequenceJSON}, rng.New(1))
	require.NoError(t, err)

	out, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(out))
}

func TestJSONFieldsBuilder_StableKeyOrder(t *testing.T) {
	spec := config.PayloadSpec{
		Kind: config.PayloadJSONFields,
		Fields: map[string]config.GeneratorSpec{
			"zeta":  {Kind: config.GenConst, Value: 1},
			"alpha": {Kind: config.GenConst, Value: 2},
		},
		FieldOrder: []string{"zeta", "alpha"},
	}

	b, err := New(spec, rng.New(1))
	require.NoError(t, err)

	out, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":2}`, string(out))
}
