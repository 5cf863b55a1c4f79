// Package iocontext provides injectable I/O streams via context for testability.
package iocontext

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// IO holds the input/output streams for commands.
type IO struct {
	Out    io.Writer
	ErrOut io.Writer
	In     io.Reader
}

// DefaultIO returns the standard IO streams.
func DefaultIO() *IO {
	return &IO{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		In:     os.Stdin,
	}
}

type ioKey struct{}

// WithIO adds IO streams to a context.
func WithIO(ctx context.Context, io *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, io)
}

// GetIO retrieves IO streams from context, defaulting to standard streams.
func GetIO(ctx context.Context) *IO {
	if io, ok := ctx.Value(ioKey{}).(*IO); ok && io != nil {
		return io
	}
	return DefaultIO()
}

// maxInputSize bounds what ReadValue will read from stdin or a file.
const maxInputSize = 32 << 20

// ReadValue resolves a flag value that may point elsewhere: "-" reads the
// context's stdin, "@path" reads a file, anything else is returned as is.
// Message content and raw request bodies use this so large JSON can be
// piped in.
func ReadValue(ctx context.Context, value string) (string, error) {
	switch {
	case value == "-":
		data, err := io.ReadAll(io.LimitReader(GetIO(ctx).In, maxInputSize+1))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if len(data) > maxInputSize {
			return "", fmt.Errorf("stdin exceeds %d bytes", maxInputSize)
		}
		return string(data), nil
	case strings.HasPrefix(value, "@") && len(value) > 1:
		path := value[1:]
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if info.Size() > maxInputSize {
			return "", fmt.Errorf("%s exceeds %d bytes", path, maxInputSize)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return value, nil
	}
}
