// Package pipeline renders the three fixed web derivatives from one
// extracted image buffer.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"panorama-ingest/internal/domain"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/wb-go/wbf/zlog"
)

type Pipeline struct {
	logger *zlog.Zerolog
}

func New(logger *zlog.Zerolog) *Pipeline {
	return &Pipeline{logger: logger}
}

// Render validates the source geometry and produces the assets in label
// order high, medium, low. Output is deterministic: the same input bytes
// yield byte-identical assets on every run.
func (p *Pipeline) Render(ctx context.Context, src *domain.ExtractedImage) ([]domain.RenderedAsset, []string, error) {
	// Header-only decode fails fast on corrupt input before any pixel
	// work happens.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(src.Bytes))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, nil, fmt.Errorf("%w: %dx%d", ErrDegenerateGeometry, cfg.Width, cfg.Height)
	}

	var warnings []string
	ratio := float64(cfg.Width) / float64(cfg.Height)
	if ratio < domain.MinAspectRatio || ratio > domain.MaxAspectRatio {
		warnings = append(warnings, fmt.Sprintf(domain.WarningAspectRatioFmt, ratio))
	}

	img, _, err := image.Decode(bytes.NewReader(src.Bytes))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	assets := make([]domain.RenderedAsset, 0, len(domain.ResolutionSpecs))
	for _, spec := range domain.ResolutionSpecs {
		asset, err := p.renderOne(img, cfg.Width, cfg.Height, spec)
		if err != nil {
			return nil, nil, err
		}
		assets = append(assets, asset)

		p.logger.Debug().
			Str("label", spec.Label).
			Str("source_format", format).
			Int("encoded_bytes", asset.ByteSize).
			Msg("Rendered resolution")
	}

	return assets, warnings, nil
}

func (p *Pipeline) renderOne(img image.Image, srcW, srcH int, spec domain.ResolutionSpec) (domain.RenderedAsset, error) {
	// Clamp the target box to the source so nothing is ever upscaled.
	targetW := min(spec.MaxWidth, srcW)
	targetH := min(spec.MaxHeight, srcH)

	resized := imaging.Fit(img, targetW, targetH, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, resized, &webp.Options{Quality: float32(spec.Quality)}); err != nil {
		return domain.RenderedAsset{}, fmt.Errorf("failed to encode %s: %w", spec.Label, err)
	}

	return domain.RenderedAsset{
		Label:    spec.Label,
		Bytes:    buf.Bytes(),
		ByteSize: buf.Len(),
	}, nil
}
