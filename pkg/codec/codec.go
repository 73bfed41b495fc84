// Package codec compresses serialized compositions into the text form kept by
// storage backends.
//
// The engine only depends on the [Codec] interface. [Zstd] is the shipped
// implementation: zstd frames encoded as standard base64, so the result can
// travel inside a JSON string.
package codec

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

// ErrCorrupt is returned by Decompress when the input is not a valid
// compressed payload.
var ErrCorrupt = errors.New("corrupt payload")

// Progress receives compression progress as a percentage from 0 to 100.
type Progress func(percent int)

// Codec turns bytes into transport text and back.
type Codec interface {
	Compress(ctx context.Context, data []byte, progress Progress) (string, error)
	Decompress(ctx context.Context, text string) ([]byte, error)
}

// ChunkSize is the amount of input compressed between progress reports.
const ChunkSize = 32 << 10

// maxDecoded bounds the memory a single payload may decompress to.
const maxDecoded = 64 << 20

// Zstd is a [Codec] backed by klauspost/compress/zstd.
type Zstd struct {
	level zstd.EncoderLevel
}

// NewZstd returns a codec using the named encoder level: "fastest",
// "default", "better" or "best". An empty name selects "default".
func NewZstd(level string) (*Zstd, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return &Zstd{level: l}, nil
}

// ParseLevel maps a level name to a zstd encoder level.
func ParseLevel(name string) (zstd.EncoderLevel, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return zstd.SpeedDefault, nil
	case "fastest":
		return zstd.SpeedFastest, nil
	case "better":
		return zstd.SpeedBetterCompression, nil
	case "best":
		return zstd.SpeedBestCompression, nil
	}
	return 0, errs.New(errs.ErrCodeInvalidInput, "unknown compression level %q", name)
}

// Compress encodes data in [ChunkSize] pieces, reporting progress after each
// piece and checking ctx in between. progress may be nil.
func (z *Zstd) Compress(ctx context.Context, data []byte, progress Progress) (string, error) {
	var out strings.Builder
	b64 := base64.NewEncoder(base64.StdEncoding, &out)
	enc, err := zstd.NewWriter(b64, zstd.WithEncoderLevel(z.level), zstd.WithZeroFrames(true))
	if err != nil {
		return "", fmt.Errorf("zstd writer: %w", err)
	}

	report := func(done int) {
		if progress == nil {
			return
		}
		if len(data) == 0 {
			progress(100)
			return
		}
		progress(done * 100 / len(data))
	}

	for off := 0; off < len(data); off += ChunkSize {
		if err := ctx.Err(); err != nil {
			enc.Close()
			return "", err
		}
		end := min(off+ChunkSize, len(data))
		if _, err := enc.Write(data[off:end]); err != nil {
			enc.Close()
			return "", fmt.Errorf("compress: %w", err)
		}
		report(end)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}
	if err := b64.Close(); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	if len(data) == 0 {
		report(0)
	}
	return out.String(), nil
}

// Decompress reverses Compress.
func (z *Zstd) Decompress(ctx context.Context, text string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFormat, ErrCorrupt, "base64: %v", err)
	}
	if len(raw) == 0 {
		return nil, errs.Wrap(errs.ErrCodeFormat, ErrCorrupt, "empty payload")
	}
	dec, err := zstd.NewReader(bytes.NewReader(nil), zstd.WithDecoderMaxMemory(maxDecoded))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFormat, ErrCorrupt, "zstd: %v", err)
	}
	return out, nil
}
