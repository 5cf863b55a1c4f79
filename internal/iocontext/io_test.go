package iocontext

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetIO(t *testing.T) {
	if io := GetIO(context.Background()); io == nil || io.Out == nil || io.ErrOut == nil || io.In == nil {
		t.Fatal("GetIO should default to the standard streams")
	}

	out := &bytes.Buffer{}
	ctx := WithIO(context.Background(), &IO{Out: out, ErrOut: &bytes.Buffer{}})
	if GetIO(ctx).Out != out {
		t.Error("GetIO should return the IO set with WithIO")
	}
}

func TestReadValue(t *testing.T) {
	dir := t.TempDir()
	card := filepath.Join(dir, "card.json")
	if err := os.WriteFile(card, []byte(`{"elements":[]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := WithIO(context.Background(), &IO{In: strings.NewReader(`{"text":"piped"}`)})

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "literal", value: `{"text":"hi"}`, want: `{"text":"hi"}`},
		{name: "stdin", value: "-", want: `{"text":"piped"}`},
		{name: "file", value: "@" + card, want: `{"elements":[]}`},
		{name: "bare at sign", value: "@", want: "@"},
		{name: "missing file", value: "@" + filepath.Join(dir, "nope.json"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadValue(ctx, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadValue(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
