package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// EncodeFunc converts a payload into its stored form. A nil result is stored
// as NULL.
type EncodeFunc func(value any) ([]byte, error)

// DecodeFunc converts a stored payload back into a value. data is nil when the
// stored payload is NULL.
type DecodeFunc func(data []byte) (any, error)

const (
	// FormatJSON always encodes with encoding/json, strings included.
	FormatJSON = "json"
	// FormatText stores values as their string form and returns strings.
	FormatText = "text"
)

// Registry holds the encoders and decoders keyed by format name.
type Registry struct {
	mu       sync.RWMutex
	encoders map[string]EncodeFunc
	decoders map[string]DecodeFunc
}

// NewRegistry returns an empty registry; every format resolves to the default codec.
func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[string]EncodeFunc),
		decoders: make(map[string]DecodeFunc),
	}
}

// Defaults returns a registry with the json and text formats registered.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register(FormatJSON, EncodeJSON, DecodeJSON)
	r.Register(FormatText, EncodeText, DecodeText)
	return r
}

// Register installs both halves of a codec for format. A nil function leaves
// that half untouched.
func (r *Registry) Register(format string, enc EncodeFunc, dec DecodeFunc) {
	r.RegisterEncoder(format, enc)
	r.RegisterDecoder(format, dec)
}

// RegisterEncoder installs the encoder for format.
func (r *Registry) RegisterEncoder(format string, enc EncodeFunc) {
	if enc == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.encoders[normalizeFormat(format)] = enc
}

// RegisterDecoder installs the decoder for format.
func (r *Registry) RegisterDecoder(format string, dec DecodeFunc) {
	if dec == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[normalizeFormat(format)] = dec
}

// Encoder returns the encoder registered for format or DefaultEncode.
func (r *Registry) Encoder(format string) EncodeFunc {
	if r == nil {
		return DefaultEncode
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if enc, ok := r.encoders[normalizeFormat(format)]; ok {
		return enc
	}
	return DefaultEncode
}

// Decoder returns the decoder registered for format or DefaultDecode.
func (r *Registry) Decoder(format string) DecodeFunc {
	if r == nil {
		return DefaultDecode
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if dec, ok := r.decoders[normalizeFormat(format)]; ok {
		return dec
	}
	return DefaultDecode
}

// Formats lists the format names with at least one registered half.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.encoders)+len(r.decoders))
	out := make([]string, 0, len(r.encoders)+len(r.decoders))
	for name := range r.encoders {
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for name := range r.decoders {
		if _, ok := seen[name]; ok {
			continue
		}
		out = append(out, name)
	}
	return out
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}

// DefaultEncode stores strings and byte slices verbatim, nil as NULL and
// everything else as JSON.
func DefaultEncode(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		if v == nil {
			return nil, nil
		}
		return v, nil
	default:
		return EncodeJSON(value)
	}
}

// DefaultDecode parses JSON and falls back to the raw string when the payload
// is not valid JSON. Strings that happen to be JSON, such as "42" or "null",
// come back parsed; the text format returns them verbatim.
func DefaultDecode(data []byte) (any, error) {
	if data == nil {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return string(data), nil
	}
	return out, nil
}

// EncodeJSON marshals value with encoding/json.
func EncodeJSON(value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	return data, nil
}

// DecodeJSON unmarshals data into a generic value and fails on invalid JSON.
func DecodeJSON(data []byte) (any, error) {
	if data == nil {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	return out, nil
}

// EncodeText stores the fmt.Sprint form of value.
func EncodeText(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return []byte(fmt.Sprint(v)), nil
	}
}

// DecodeText returns the stored payload as a string.
func DecodeText(data []byte) (any, error) {
	if data == nil {
		return nil, nil
	}
	return string(data), nil
}
