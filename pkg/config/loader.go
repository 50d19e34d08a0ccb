package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// LoadFile reads a Plan from a JSON or YAML file, runs it through the
// structural schema and then the semantic Validator, and resolves any
// file/pickle_file payload paths relative to the config file's directory.
// The format is auto-detected from the extension (.yaml/.yml for YAML,
// otherwise JSON).
func LoadFile(path string) (*Plan, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	isYAML := isYAMLPath(path)

	jsonData := data
	if isYAML {
		jsonData, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
	} else if !json.Valid(data) {
		return nil, fmt.Errorf("%w in file: %s", ErrInvalidJSON, path)
	}

	if err := ValidateSchema(jsonData); err != nil {
		return nil, err
	}

	var plan Plan
	if err := json.Unmarshal(jsonData, &plan); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	resolvePayloadPaths(&plan, filepath.Dir(path))

	v := NewValidator()
	if err := v.Validate(&plan); err != nil {
		return nil, err
	}

	return &plan, nil
}

func isYAMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// yamlToJSON re-encodes YAML bytes as JSON so the rest of the loader
// (schema validation, decoding) only ever deals with one wire format.
func yamlToJSON(data []byte) ([]byte, error) {
	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeYAMLValue(node))
}

// normalizeYAMLValue converts the map[string]interface{}/map[interface{}]interface{}
// mix that yaml.v3 can produce into plain map[string]any trees that
// encoding/json can marshal.
func normalizeYAMLValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = normalizeYAMLValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAMLValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = normalizeYAMLValue(vv)
		}
		return out
	default:
		return val
	}
}

// resolvePayloadPaths rewrites file/pickle_file payload paths that are
// relative into absolute paths anchored at the config file's directory, so
// the running simulator doesn't depend on its own working directory.
func resolvePayloadPaths(plan *Plan, baseDir string) {
	for i := range plan.Streams {
		resolveOnePayloadPath(&plan.Streams[i].Payload, baseDir)
	}
}

func resolveOnePayloadPath(p *PayloadSpec, baseDir string) {
	if p.Kind != PayloadFile && p.Kind != PayloadPickleFile {
		return
	}
	if p.Path == "" || filepath.IsAbs(p.Path) {
		return
	}
	p.Path = filepath.Join(baseDir, p.Path)
}
