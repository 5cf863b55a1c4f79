package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

// FormFile is a file part of a multipart upload. Data is sent byte for byte.
type FormFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewFormFile reads r fully into a FormFile named name.
func NewFormFile(name string, r io.Reader) (*FormFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return &FormFile{Name: name, Data: data}, nil
}

// FormFileFromPath loads the file at path.
func FormFileFromPath(path string) (*FormFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return &FormFile{Name: filepath.Base(path), Data: data}, nil
}

// Size returns the payload length in bytes.
func (f *FormFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart renders fields then files into a single buffered body so
// retries can replay it.
func encodeMultipart(fields []formField, files []formFilePart) ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range fields {
		if err := writer.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	for _, f := range files {
		name := f.file.Name
		if name == "" {
			name = f.name
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.name), quoteEscaper.Replace(name)))
		contentType := f.file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %s: %w", name, err)
		}
		if _, err := part.Write(f.file.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file content %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}
