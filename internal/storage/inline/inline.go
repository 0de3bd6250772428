// Package inline is the storage fallback used when no object-store
// credential is configured: every asset is returned as a self-contained
// data URI. The pipeline stays runnable and testable without external
// infrastructure, at the cost of large response payloads; callers must
// not assume these URLs dereference over the network.
package inline

import (
	"context"
	"encoding/base64"

	"panorama-ingest/internal/domain"
)

type Sink struct{}

func New() *Sink {
	return &Sink{}
}

func (s *Sink) Store(_ context.Context, _ string, assets []domain.RenderedAsset) (map[string]string, error) {
	urls := make(map[string]string, len(assets))
	for _, asset := range assets {
		urls[asset.Label] = "data:" + domain.EncodedMimeType + ";base64," +
			base64.StdEncoding.EncodeToString(asset.Bytes)
	}
	return urls, nil
}
