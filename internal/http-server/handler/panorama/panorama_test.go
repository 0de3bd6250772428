package panorama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"panorama-ingest/internal/domain"
	"panorama-ingest/internal/extractor"
	"panorama-ingest/internal/pipeline"
	"panorama-ingest/internal/storage"
	"panorama-ingest/internal/usecase/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

func TestMain(m *testing.M) {
	zlog.Init()
	m.Run()
}

type stubUsecase struct {
	result *domain.IngestResult
	err    error
}

func (s *stubUsecase) Ingest(context.Context, domain.RawUpload) (*domain.IngestResult, error) {
	return s.result, s.err
}

func (s *stubUsecase) GetPanorama(context.Context, string) (*domain.PanoramaRecord, error) {
	return nil, ingest.ErrHistoryUnavailable
}

func (s *stubUsecase) ListPanoramas(context.Context, int, int) ([]domain.PanoramaRecord, error) {
	return nil, ingest.ErrHistoryUnavailable
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/panoramas", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadPanorama_SuccessShape(t *testing.T) {
	stub := &stubUsecase{
		result: &domain.IngestResult{
			PanoramaID: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
			URLs: map[string]string{
				domain.LabelHigh:   "data:image/webp;base64,aGlnaA==",
				domain.LabelMedium: "data:image/webp;base64,bWVk",
				domain.LabelLow:    "data:image/webp;base64,bG93",
			},
			Warnings: []string{"erste Warnung", "zweite Warnung"},
		},
	}
	h := NewPanoramaHandler(stub, domain.DefaultMaxUploadSize, &zlog.Logger)

	rec := httptest.NewRecorder()
	h.UploadPanorama(rec, multipartUpload(t, "room.jpg", []byte("payload")))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success    bool              `json:"success"`
		PanoramaID string            `json:"panoramaId"`
		Images     map[string]string `json:"images"`
		Warning    string            `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", resp.PanoramaID)
	assert.Len(t, resp.Images, 3)
	assert.Equal(t, "erste Warnung; zweite Warnung", resp.Warning)
}

func TestUploadPanorama_ErrorShapes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantTexts  []string
	}{
		{"invalid upload", fmt.Errorf("%w: too big", ingest.ErrInvalidUpload), http.StatusBadRequest, []string{"Ungültiger Upload"}},
		{"no decodable image", fmt.Errorf("%w: thumbnails only", extractor.ErrNoDecodableImage), http.StatusUnprocessableEntity, []string{"JPEG oder TIFF"}},
		{"unreadable image", fmt.Errorf("%w: bad huffman table", pipeline.ErrUnreadableImage), http.StatusUnprocessableEntity, []string{"konnte nicht gelesen"}},
		{"degenerate geometry", fmt.Errorf("%w: 0x100", pipeline.ErrDegenerateGeometry), http.StatusUnprocessableEntity, []string{"konnte nicht gelesen"}},
		{"storage unavailable", fmt.Errorf("%w: backend rejected write", storage.ErrStorageUnavailable), http.StatusBadGateway, []string{"konnte nicht gespeichert", "backend rejected write"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewPanoramaHandler(&stubUsecase{err: tc.err}, domain.DefaultMaxUploadSize, &zlog.Logger)

			rec := httptest.NewRecorder()
			h.UploadPanorama(rec, multipartUpload(t, "room.dng", []byte("payload")))

			require.Equal(t, tc.wantStatus, rec.Code)

			var resp struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			for _, want := range tc.wantTexts {
				assert.Contains(t, resp.Error, want)
			}
		})
	}
}

func TestUploadPanorama_MissingFile(t *testing.T) {
	h := NewPanoramaHandler(&stubUsecase{}, domain.DefaultMaxUploadSize, &zlog.Logger)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "kein file-Feld"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/panoramas", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.UploadPanorama(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPanoramas_RejectsBadPaging(t *testing.T) {
	h := NewPanoramaHandler(&stubUsecase{}, domain.DefaultMaxUploadSize, &zlog.Logger)

	req := httptest.NewRequest(http.MethodGet, "/api/panoramas?limit=9999", nil)
	rec := httptest.NewRecorder()
	h.ListPanoramas(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
