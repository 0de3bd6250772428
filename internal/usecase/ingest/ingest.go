// Package ingest drives an upload through extraction, rendering and
// storage, and maps every failure to the stable error taxonomy.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"panorama-ingest/internal/domain"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

// Orchestrator is the only externally visible entry point of the
// ingestion core. Repository and producer are optional; when absent the
// corresponding side effects are skipped.
type Orchestrator struct {
	extractor     sourceExtractor
	renderer      resolutionRenderer
	sink          storageSink
	repo          panoramaRepository
	producer      resultProducer
	maxUploadSize int64
	logger        *zlog.Zerolog
}

func NewOrchestrator(
	extractor sourceExtractor,
	renderer resolutionRenderer,
	sink storageSink,
	maxUploadSize int64,
	logger *zlog.Zerolog,
) *Orchestrator {
	return &Orchestrator{
		extractor:     extractor,
		renderer:      renderer,
		sink:          sink,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// WithHistory attaches the optional ingest-history repository.
func (o *Orchestrator) WithHistory(repo panoramaRepository) *Orchestrator {
	o.repo = repo
	return o
}

// WithProducer attaches the optional result-event producer.
func (o *Orchestrator) WithProducer(producer resultProducer) *Orchestrator {
	o.producer = producer
	return o
}

// Ingest runs the linear state machine received -> extracted ->
// rendered -> stored. Each stage's input buffer is dropped once
// consumed to bound peak memory on multi-megabyte uploads. All three
// assets are rendered before the first storage write, so a late failure
// never leaves partial results behind.
func (o *Orchestrator) Ingest(ctx context.Context, upload domain.RawUpload) (*domain.IngestResult, error) {
	if err := o.validate(upload); err != nil {
		return nil, err
	}

	panoramaID := domain.NewPanoramaID()
	originalSize := int64(len(upload.Bytes))

	o.logger.Info().
		Str("panorama_id", panoramaID).
		Str("filename", upload.Filename).
		Int64("size", originalSize).
		Msg("Ingest started")

	extracted, err := o.extractor.Extract(upload.Bytes, upload.Filename)
	if err != nil {
		o.recordFailure(ctx, panoramaID, upload.Filename, originalSize, err)
		return nil, err
	}
	upload.Bytes = nil

	assets, renderWarnings, err := o.renderer.Render(ctx, extracted)
	if err != nil {
		o.recordFailure(ctx, panoramaID, upload.Filename, originalSize, err)
		return nil, err
	}

	warnings := make([]string, 0, len(extracted.Warnings)+len(renderWarnings))
	warnings = append(warnings, extracted.Warnings...)
	warnings = append(warnings, renderWarnings...)
	sourceKind := extracted.Kind
	extracted.Bytes = nil

	urls, err := o.sink.Store(ctx, panoramaID, assets)
	if err != nil {
		o.recordFailure(ctx, panoramaID, upload.Filename, originalSize, err)
		return nil, err
	}

	result := &domain.IngestResult{
		PanoramaID: panoramaID,
		URLs:       urls,
		Warnings:   warnings,
	}

	o.saveRecord(ctx, &domain.PanoramaRecord{
		ID:               panoramaID,
		OriginalFilename: upload.Filename,
		OriginalSize:     originalSize,
		SourceKind:       sourceKind,
		Status:           domain.StatusCompleted,
		Warnings:         warnings,
		HighURL:          urls[domain.LabelHigh],
		MediumURL:        urls[domain.LabelMedium],
		LowURL:           urls[domain.LabelLow],
		CreatedAt:        time.Now(),
	})
	o.publishEvent(ctx, domain.IngestEvent{
		ID:         uuid.New().String(),
		PanoramaID: panoramaID,
		Filename:   upload.Filename,
		Status:     domain.StatusCompleted,
		URLs:       urls,
		Warnings:   warnings,
		HappenedAt: time.Now().Unix(),
	})

	o.logger.Info().
		Str("panorama_id", panoramaID).
		Str("source_kind", string(sourceKind)).
		Int("warnings", len(warnings)).
		Msg("Ingest completed")

	return result, nil
}

// GetPanorama returns one ingest-history record.
func (o *Orchestrator) GetPanorama(ctx context.Context, id string) (*domain.PanoramaRecord, error) {
	if o.repo == nil {
		return nil, ErrHistoryUnavailable
	}
	return o.repo.GetByID(ctx, id)
}

// ListPanoramas returns ingest-history records, newest first.
func (o *Orchestrator) ListPanoramas(ctx context.Context, limit, offset int) ([]domain.PanoramaRecord, error) {
	if o.repo == nil {
		return nil, ErrHistoryUnavailable
	}
	return o.repo.List(ctx, limit, offset)
}

// validate fails fast before any scanning or decoding is attempted.
func (o *Orchestrator) validate(upload domain.RawUpload) error {
	if len(upload.Bytes) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidUpload)
	}
	if int64(len(upload.Bytes)) > o.maxUploadSize {
		return fmt.Errorf("%w: payload is %d bytes, limit is %d", ErrInvalidUpload, len(upload.Bytes), o.maxUploadSize)
	}
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !domain.AllowedExtension(ext) {
		return fmt.Errorf("%w: extension %q is not allowed", ErrInvalidUpload, ext)
	}
	return nil
}

// saveRecord and publishEvent are best-effort: the ingest result is
// already final and the error taxonomy is closed, so side-effect
// failures are logged and swallowed.
func (o *Orchestrator) saveRecord(ctx context.Context, record *domain.PanoramaRecord) {
	if o.repo == nil {
		return
	}
	if err := o.repo.Save(ctx, record); err != nil {
		o.logger.Error().Err(err).Str("panorama_id", record.ID).Msg("Failed to save ingest record")
	}
}

func (o *Orchestrator) publishEvent(ctx context.Context, event domain.IngestEvent) {
	if o.producer == nil {
		return
	}
	value, err := json.Marshal(event)
	if err != nil {
		o.logger.Error().Err(err).Str("panorama_id", event.PanoramaID).Msg("Failed to marshal ingest event")
		return
	}
	if err := o.producer.Send(ctx, []byte(event.PanoramaID), value); err != nil {
		o.logger.Error().Err(err).Str("panorama_id", event.PanoramaID).Msg("Failed to publish ingest event")
	}
}

func (o *Orchestrator) recordFailure(ctx context.Context, panoramaID, filename string, size int64, cause error) {
	o.logger.Error().
		Err(cause).
		Str("panorama_id", panoramaID).
		Str("filename", filename).
		Msg("Ingest failed")

	o.saveRecord(ctx, &domain.PanoramaRecord{
		ID:               panoramaID,
		OriginalFilename: filename,
		OriginalSize:     size,
		Status:           domain.StatusFailed,
		Error:            cause.Error(),
		CreatedAt:        time.Now(),
	})
	o.publishEvent(ctx, domain.IngestEvent{
		ID:         uuid.New().String(),
		PanoramaID: panoramaID,
		Filename:   filename,
		Status:     domain.StatusFailed,
		Error:      cause.Error(),
		HappenedAt: time.Now().Unix(),
	})
}
