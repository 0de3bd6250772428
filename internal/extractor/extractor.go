// Package extractor decides, per uploaded file, whether the buffer is
// directly decodable or whether the best embedded JPEG preview has to be
// pulled out of a proprietary RAW container.
package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"panorama-ingest/internal/domain"
	"panorama-ingest/internal/scanner"

	"github.com/gabriel-vasile/mimetype"
	"github.com/wb-go/wbf/zlog"
)

type Extractor struct {
	scanner        *scanner.Scanner
	minSourceBytes int
	logger         *zlog.Zerolog
}

// New wires the extractor with its accepted-source floor. The floor is
// deliberately higher than the scanner's candidate floor: cameras embed
// several preview sizes, and a thumbnail-only container must be rejected
// outright instead of silently producing a blurry 4K derivative.
func New(sc *scanner.Scanner, minSourceBytes int, logger *zlog.Zerolog) *Extractor {
	return &Extractor{
		scanner:        sc,
		minSourceBytes: minSourceBytes,
		logger:         logger,
	}
}

// Extract produces the one decodable image buffer for the pipeline.
// RAW-suffixed files go through marker scanning and largest-candidate
// selection; everything else passes through unchanged.
func (e *Extractor) Extract(rawBytes []byte, filename string) (*domain.ExtractedImage, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	if domain.RawExtensions[ext] {
		return e.extractEmbedded(rawBytes, filename)
	}

	if mt := mimetype.Detect(rawBytes); !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: %s is not a decodable image (detected %s)",
			ErrNoDecodableImage, filename, mt.String())
	}

	return &domain.ExtractedImage{
		Bytes: rawBytes,
		Kind:  domain.SourceDirectImage,
	}, nil
}

func (e *Extractor) extractEmbedded(rawBytes []byte, filename string) (*domain.ExtractedImage, error) {
	segments := e.scanner.FindJPEGSegments(rawBytes)

	best, ok := scanner.Largest(segments)
	if !ok {
		return nil, fmt.Errorf("%w: no embedded JPEG found in %s", ErrNoDecodableImage, filename)
	}
	if best.Len() < e.minSourceBytes {
		return nil, fmt.Errorf("%w: largest embedded JPEG in %s is %d bytes, need at least %d",
			ErrNoDecodableImage, filename, best.Len(), e.minSourceBytes)
	}

	e.logger.Info().
		Str("filename", filename).
		Int("candidates", len(segments)).
		Int("preview_size", best.Len()).
		Msg("Using embedded RAW preview")

	// Copy the segment so the multi-megabyte container can be freed.
	preview := make([]byte, best.Len())
	copy(preview, rawBytes[best.Start:best.End])

	return &domain.ExtractedImage{
		Bytes:    preview,
		Kind:     domain.SourceEmbeddedPreview,
		Warnings: []string{domain.WarningRawPreview},
	}, nil
}
