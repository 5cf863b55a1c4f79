package api

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodeMultipart_RoundTrip(t *testing.T) {
	// Binary payload containing CR/LF and a fake boundary line.
	payload := append([]byte{0x00, 0xff, '\r', '\n'}, []byte("--boundary\r\n\x89PNG")...)

	body, contentType, err := encodeMultipart(
		[]formField{{name: "file_type", value: "stream"}, {name: "file_name", value: `we"ird.bin`}},
		[]formFilePart{{name: "file", file: &FormFile{Name: `we"ird.bin`, Data: payload}}},
	)
	if err != nil {
		t.Fatalf("encodeMultipart() error: %v", err)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		t.Fatalf("content type = %q (%v)", contentType, err)
	}

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	var names []string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart() error: %v", err)
		}
		names = append(names, part.FormName())
		data, _ := io.ReadAll(part)

		switch part.FormName() {
		case "file_type":
			if string(data) != "stream" {
				t.Errorf("file_type = %q", data)
			}
		case "file":
			if part.FileName() != `we"ird.bin` {
				t.Errorf("filename = %q", part.FileName())
			}
			if got := part.Header.Get("Content-Type"); got != "application/octet-stream" {
				t.Errorf("part content type = %q", got)
			}
			if len(data) != len(payload) || !bytes.Equal(data, payload) {
				t.Errorf("file data length %d, want %d", len(data), len(payload))
			}
		}
	}

	if strings.Join(names, ",") != "file_type,file_name,file" {
		t.Errorf("part order = %v, fields must precede files", names)
	}
}

func TestFormFileFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := FormFileFromPath(path)
	if err != nil {
		t.Fatalf("FormFileFromPath() error: %v", err)
	}
	if f.Name != "notes.txt" || f.Size() != 5 {
		t.Errorf("unexpected file %+v", f)
	}

	if _, err := FormFileFromPath(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewFormFile(t *testing.T) {
	f, err := NewFormFile("stdin", strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("NewFormFile() error: %v", err)
	}
	if f.Name != "stdin" || string(f.Data) != "abc" {
		t.Errorf("unexpected file %+v", f)
	}
	var nilFile *FormFile
	if nilFile.Size() != 0 {
		t.Error("nil FormFile should have size 0")
	}
}
