// Package photo normalizes evidence photos for storage on a work order:
// decode, re-encode as JPEG at a fixed quality, and wrap as a data URL the
// way saved tasks reference them.
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"

	"golang.org/x/sync/errgroup"
)

const dataURLPrefix = "data:image/jpeg;base64,"

// Processor re-encodes photos concurrently with a bounded worker count.
type Processor struct {
	quality       int
	maxConcurrent int
	logger        *log.Logger
}

// NewProcessor creates a processor. quality is the JPEG quality 1..100;
// maxConcurrent bounds parallel encodes.
func NewProcessor(quality, maxConcurrent int, logger *log.Logger) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 70
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &Processor{quality: quality, maxConcurrent: maxConcurrent, logger: logger}
}

// ProcessFiles re-encodes each photo file and returns data URLs in input
// order. A failure on any file cancels the rest.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) ([]string, error) {
	out := make([]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			url, err := p.processFile(path)
			if err != nil {
				return fmt.Errorf("photo %s: %w", path, err)
			}
			out[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Processor) processFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	p.logger.Printf("DEBUG photo: re-encoding %s (%s, %dx%d)", path, format, img.Bounds().Dx(), img.Bounds().Dy())
	return p.Encode(img)
}

// Encode converts a decoded image to a JPEG data URL at the configured
// quality.
func (p *Processor) Encode(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// IsDataURL reports whether a stored photo reference is an inline data URL
// rather than a file path.
func IsDataURL(ref string) bool {
	return len(ref) > len(dataURLPrefix) && ref[:len(dataURLPrefix)] == dataURLPrefix
}
