package panorama

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"panorama-ingest/internal/domain"
	"panorama-ingest/internal/extractor"
	"panorama-ingest/internal/http-server/handler/panorama/dto"
	"panorama-ingest/internal/pipeline"
	repo "panorama-ingest/internal/repository/panorama"
	"panorama-ingest/internal/storage"
	"panorama-ingest/internal/usecase/ingest"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/zlog"
)

const (
	maxMemory        = 32 << 20
	warningSeparator = "; "
	defaultListLimit = 20
)

type PanoramaHandler struct {
	usecase       panoramaUsecase
	validate      *validator.Validate
	maxUploadSize int64
	logger        *zlog.Zerolog
}

func NewPanoramaHandler(usecase panoramaUsecase, maxUploadSize int64, logger *zlog.Zerolog) *PanoramaHandler {
	return &PanoramaHandler{
		usecase:       usecase,
		validate:      validator.New(),
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// UploadPanorama accepts one multipart file field and runs the full
// ingest synchronously.
func (h *PanoramaHandler) UploadPanorama(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Slack on top of the payload ceiling so the orchestrator, not the
	// transport, reports the oversize violation.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+maxMemory)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse multipart form")
		h.respondFailure(w, http.StatusBadRequest, msgInvalidUpload)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Warn().Err(err).Msg("File not found in request")
		h.respondFailure(w, http.StatusBadRequest, msgInvalidUpload)
		return
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read upload")
		h.respondFailure(w, http.StatusInternalServerError, msgInternal)
		return
	}

	result, err := h.usecase.Ingest(ctx, domain.RawUpload{
		Bytes:    fileBytes,
		Filename: header.Filename,
	})
	if err != nil {
		h.handleIngestError(w, err, header.Filename)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.UploadResponse{
		Success:    true,
		PanoramaID: result.PanoramaID,
		Images:     result.URLs,
		Warning:    strings.Join(result.Warnings, warningSeparator),
	})
}

func (h *PanoramaHandler) GetPanorama(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.respondFailure(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	record, err := h.usecase.GetPanorama(r.Context(), id)
	if err != nil {
		h.handleHistoryError(w, err, id)
		return
	}

	h.respondJSON(w, http.StatusOK, toPanoramaResponse(record))
}

func (h *PanoramaHandler) ListPanoramas(w http.ResponseWriter, r *http.Request) {
	req := dto.ListRequest{Limit: defaultListLimit}

	if v := r.URL.Query().Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		req.Offset, _ = strconv.Atoi(v)
	}

	if err := h.validate.Struct(req); err != nil {
		h.respondFailure(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	records, err := h.usecase.ListPanoramas(r.Context(), req.Limit, req.Offset)
	if err != nil {
		h.handleHistoryError(w, err, "")
		return
	}

	responses := make([]dto.PanoramaResponse, 0, len(records))
	for i := range records {
		responses = append(responses, toPanoramaResponse(&records[i]))
	}

	h.respondJSON(w, http.StatusOK, responses)
}

func (h *PanoramaHandler) handleIngestError(w http.ResponseWriter, err error, filename string) {
	switch {
	case errors.Is(err, ingest.ErrInvalidUpload):
		h.logger.Warn().Err(err).Str("filename", filename).Msg("Invalid upload")
		h.respondFailure(w, http.StatusBadRequest, msgInvalidUpload)
	case errors.Is(err, extractor.ErrNoDecodableImage):
		h.logger.Warn().Err(err).Str("filename", filename).Msg("No decodable image")
		h.respondFailure(w, http.StatusUnprocessableEntity, msgNoDecodable)
	case errors.Is(err, pipeline.ErrUnreadableImage), errors.Is(err, pipeline.ErrDegenerateGeometry):
		h.logger.Warn().Err(err).Str("filename", filename).Msg("Unreadable image")
		h.respondFailure(w, http.StatusUnprocessableEntity, msgUnreadable)
	case errors.Is(err, storage.ErrStorageUnavailable):
		h.logger.Error().Err(err).Str("filename", filename).Msg("Storage write failed")
		h.respondFailure(w, http.StatusBadGateway, fmt.Sprintf(msgStorageFmt, err.Error()))
	default:
		h.logger.Error().Err(err).Str("filename", filename).Msg("Ingest failed")
		h.respondFailure(w, http.StatusInternalServerError, msgInternal)
	}
}

func (h *PanoramaHandler) handleHistoryError(w http.ResponseWriter, err error, id string) {
	switch {
	case errors.Is(err, repo.ErrPanoramaNotFound):
		h.respondFailure(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, ingest.ErrHistoryUnavailable):
		h.respondFailure(w, http.StatusServiceUnavailable, msgNoHistory)
	default:
		h.logger.Error().Err(err).Str("panorama_id", id).Msg("History lookup failed")
		h.respondFailure(w, http.StatusInternalServerError, msgInternal)
	}
}

func toPanoramaResponse(record *domain.PanoramaRecord) dto.PanoramaResponse {
	return dto.PanoramaResponse{
		ID:         record.ID,
		Filename:   record.OriginalFilename,
		Size:       record.OriginalSize,
		SourceKind: string(record.SourceKind),
		Status:     string(record.Status),
		Warnings:   record.Warnings,
		Images: dto.ImageURLs{
			High:   record.HighURL,
			Medium: record.MediumURL,
			Low:    record.LowURL,
		},
		CreatedAt: record.CreatedAt,
	}
}

func (h *PanoramaHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *PanoramaHandler) respondFailure(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, dto.ErrorResponse{Success: false, Error: message})
}
