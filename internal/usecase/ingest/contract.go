package ingest

import (
	"context"

	"panorama-ingest/internal/domain"
)

type sourceExtractor interface {
	Extract(rawBytes []byte, filename string) (*domain.ExtractedImage, error)
}

type resolutionRenderer interface {
	Render(ctx context.Context, src *domain.ExtractedImage) ([]domain.RenderedAsset, []string, error)
}

type storageSink interface {
	Store(ctx context.Context, panoramaID string, assets []domain.RenderedAsset) (map[string]string, error)
}

type panoramaRepository interface {
	Save(ctx context.Context, record *domain.PanoramaRecord) error
	GetByID(ctx context.Context, id string) (*domain.PanoramaRecord, error)
	List(ctx context.Context, limit, offset int) ([]domain.PanoramaRecord, error)
}

type resultProducer interface {
	Send(ctx context.Context, key, value []byte) error
}
