package panorama

import (
	"context"

	"panorama-ingest/internal/domain"
)

type panoramaUsecase interface {
	Ingest(ctx context.Context, upload domain.RawUpload) (*domain.IngestResult, error)
	GetPanorama(ctx context.Context, id string) (*domain.PanoramaRecord, error)
	ListPanoramas(ctx context.Context, limit, offset int) ([]domain.PanoramaRecord, error)
}
