package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"panorama-ingest/internal/domain"
	"panorama-ingest/internal/extractor"
	"panorama-ingest/internal/pipeline"
	"panorama-ingest/internal/scanner"
	"panorama-ingest/internal/storage"
	"panorama-ingest/internal/storage/inline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/zlog"
)

func TestMain(m *testing.M) {
	zlog.Init()
	m.Run()
}

// newTestOrchestrator wires real pipeline stages with the inline sink
// and no history/event backends. The extraction floors are lowered so
// fixture previews stay small.
func newTestOrchestrator(sink storageSink, maxUpload int64) *Orchestrator {
	ext := extractor.New(scanner.New(1024), 10<<10, &zlog.Logger)
	return NewOrchestrator(ext, pipeline.New(&zlog.Logger), sink, maxUpload, &zlog.Logger)
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x * y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestIngest_DirectJPEGWithInlineSink(t *testing.T) {
	o := newTestOrchestrator(inline.New(), domain.DefaultMaxUploadSize)

	result, err := o.Ingest(context.Background(), domain.RawUpload{
		Bytes:    encodeJPEG(t, 1024, 512),
		Filename: "room.jpg",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.PanoramaID)
	assert.Empty(t, result.Warnings)
	require.Len(t, result.URLs, 3)
	for _, label := range []string{domain.LabelHigh, domain.LabelMedium, domain.LabelLow} {
		assert.True(t, strings.HasPrefix(result.URLs[label], "data:image/webp;base64,"), label)
	}
}

func TestIngest_RawContainerUsesEmbeddedPreview(t *testing.T) {
	// A fake RAW container: junk, a real JPEG preview, more junk. The
	// entropy-coded stream of a baseline JPEG never contains FF D9, so
	// marker scanning recovers the preview exactly.
	preview := encodeJPEG(t, 1024, 512)
	container := append(bytes.Repeat([]byte{0x13, 0x37}, 8192), preview...)
	container = append(container, bytes.Repeat([]byte{0x00}, 4096)...)

	o := newTestOrchestrator(inline.New(), domain.DefaultMaxUploadSize)
	result, err := o.Ingest(context.Background(), domain.RawUpload{
		Bytes:    container,
		Filename: "pano.dng",
	})

	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "JPEG oder TIFF")
	require.Len(t, result.URLs, 3)
}

func TestIngest_RawContainerWithoutUsablePreview(t *testing.T) {
	o := newTestOrchestrator(inline.New(), domain.DefaultMaxUploadSize)

	// The only embedded JPEG is far below the accepted-source floor.
	small := make([]byte, 2048)
	copy(small, []byte{0xff, 0xd8, 0xff})
	copy(small[len(small)-2:], []byte{0xff, 0xd9})
	container := append(bytes.Repeat([]byte{0x42}, 1024), small...)

	_, err := o.Ingest(context.Background(), domain.RawUpload{
		Bytes:    container,
		Filename: "pano.dng",
	})

	assert.ErrorIs(t, err, extractor.ErrNoDecodableImage)
}

func TestIngest_OversizedPayloadFailsBeforeScanning(t *testing.T) {
	o := newTestOrchestrator(failingSink{}, 1<<20)

	_, err := o.Ingest(context.Background(), domain.RawUpload{
		Bytes:    make([]byte, 2<<20),
		Filename: "huge.jpg",
	})

	// The failing sink proves no later stage ran.
	assert.ErrorIs(t, err, ErrInvalidUpload)
}

func TestIngest_DisallowedExtension(t *testing.T) {
	o := newTestOrchestrator(inline.New(), domain.DefaultMaxUploadSize)

	_, err := o.Ingest(context.Background(), domain.RawUpload{
		Bytes:    encodeJPEG(t, 512, 256),
		Filename: "room.exe",
	})

	assert.ErrorIs(t, err, ErrInvalidUpload)
}

func TestIngest_EmptyPayload(t *testing.T) {
	o := newTestOrchestrator(inline.New(), domain.DefaultMaxUploadSize)

	_, err := o.Ingest(context.Background(), domain.RawUpload{Filename: "room.jpg"})

	assert.ErrorIs(t, err, ErrInvalidUpload)
}

func TestIngest_StorageFailureSurfaces(t *testing.T) {
	o := newTestOrchestrator(failingSink{}, domain.DefaultMaxUploadSize)

	_, err := o.Ingest(context.Background(), domain.RawUpload{
		Bytes:    encodeJPEG(t, 512, 256),
		Filename: "room.jpg",
	})

	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}

func TestGetPanorama_WithoutRepository(t *testing.T) {
	o := newTestOrchestrator(inline.New(), domain.DefaultMaxUploadSize)

	_, err := o.GetPanorama(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.ErrorIs(t, err, ErrHistoryUnavailable)

	_, err = o.ListPanoramas(context.Background(), 20, 0)
	assert.ErrorIs(t, err, ErrHistoryUnavailable)
}

type failingSink struct{}

func (failingSink) Store(context.Context, string, []domain.RenderedAsset) (map[string]string, error) {
	return nil, fmt.Errorf("%w: backend rejected write", storage.ErrStorageUnavailable)
}
