package codec_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"mqlite/internal/codec"
)

func TestDefaultEncode(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  []byte
	}{
		{"nil", nil, nil},
		{"string", "hello", []byte("hello")},
		{"bytes", []byte("raw"), []byte("raw")},
		{"map", map[string]any{"foo": "bar"}, []byte(`{"foo":"bar"}`)},
		{"number", 42, []byte("42")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := codec.DefaultEncode(tc.value)
			if err != nil {
				t.Fatalf("DefaultEncode: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestDefaultDecodeFallsBackToString(t *testing.T) {
	got, err := codec.DefaultDecode([]byte("not json"))
	if err != nil {
		t.Fatalf("DefaultDecode: %v", err)
	}
	if got != "not json" {
		t.Fatalf("expected raw string, got %#v", got)
	}

	got, err = codec.DefaultDecode([]byte(`{"foo":"bar"}`))
	if err != nil {
		t.Fatalf("DefaultDecode: %v", err)
	}
	want := map[string]any{"foo": "bar"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v want %#v", got, want)
	}

	got, err = codec.DefaultDecode(nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil for NULL payload, got %#v err=%v", got, err)
	}
}

func TestRegistryFallsBackToDefault(t *testing.T) {
	r := codec.NewRegistry()
	data, err := r.Encoder("mystery")(map[string]any{"foo": "bar"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	value, err := r.Decoder("mystery")(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(value, map[string]any{"foo": "bar"}) {
		t.Fatalf("unexpected round trip: %#v", value)
	}
}

func TestRegistryCustomCodec(t *testing.T) {
	r := codec.NewRegistry()
	r.Register("Upper",
		func(v any) ([]byte, error) { return []byte("<" + v.(string) + ">"), nil },
		func(b []byte) (any, error) { return "decoded:" + string(b), nil },
	)

	data, err := r.Encoder("upper")("x")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(data) != "<x>" {
		t.Fatalf("custom encoder not used, got %q", data)
	}
	value, _ := r.Decoder(" UPPER ")(data)
	if value != "decoded:<x>" {
		t.Fatalf("custom decoder not used, got %#v", value)
	}
	if len(r.Formats()) != 1 {
		t.Fatalf("expected one format, got %v", r.Formats())
	}
}

func TestDecodeJSONRejectsInvalid(t *testing.T) {
	r := codec.Defaults()
	_, err := r.Decoder(codec.FormatJSON)([]byte("{"))
	if err == nil {
		t.Fatal("expected json decoder to fail")
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected wrapped syntax error, got %T", err)
	}
}

func TestNilRegistryUsesDefaults(t *testing.T) {
	var r *codec.Registry
	data, err := r.Encoder("any")("plain")
	if err != nil || string(data) != "plain" {
		t.Fatalf("unexpected encode result %q err=%v", data, err)
	}
}
