// Package storage defines the sink capability for persisting rendered
// panorama assets. Two implementations exist: a persistent MinIO sink
// and an inline data-URI fallback; the app picks one at construction.
package storage

import (
	"context"
	"errors"
	"fmt"

	"panorama-ingest/internal/domain"
)

var ErrStorageUnavailable = errors.New("storage unavailable")

type Sink interface {
	// Store persists each asset under a stable key and returns one
	// dereferenceable URL per resolution label.
	Store(ctx context.Context, panoramaID string, assets []domain.RenderedAsset) (map[string]string, error)
}

// ObjectKey returns the stable per-resolution storage key,
// panoramas/{id}/{label}.webp.
func ObjectKey(panoramaID, label string) string {
	return fmt.Sprintf("%s%s/%s%s", domain.PathPrefixPanoramas, panoramaID, label, domain.EncodedExt)
}
