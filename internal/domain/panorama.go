package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type RawUpload struct {
	Bytes    []byte
	Filename string
}

type SourceKind string

const (
	SourceDirectImage     SourceKind = "direct"
	SourceEmbeddedPreview SourceKind = "embedded_preview"
)

// ExtractedImage is the single decodable buffer chosen for rendering.
// Bytes always start with a recognizable image signature; the extractor
// fails instead of constructing one otherwise.
type ExtractedImage struct {
	Bytes    []byte
	Kind     SourceKind
	Warnings []string
}

type ResolutionSpec struct {
	Label     string
	MaxWidth  int
	MaxHeight int
	Quality   int
}

const (
	LabelHigh   = "high"
	LabelMedium = "medium"
	LabelLow    = "low"
)

// ResolutionSpecs lists the three fixed derivatives in output order.
// Targets are clamped to the source dimensions at render time, never
// upscaled.
var ResolutionSpecs = []ResolutionSpec{
	{Label: LabelHigh, MaxWidth: 4096, MaxHeight: 2048, Quality: 85},
	{Label: LabelMedium, MaxWidth: 2048, MaxHeight: 1024, Quality: 85},
	{Label: LabelLow, MaxWidth: 512, MaxHeight: 256, Quality: 60},
}

type RenderedAsset struct {
	Label    string
	Bytes    []byte
	ByteSize int
}

type IngestResult struct {
	PanoramaID string
	URLs       map[string]string
	Warnings   []string
}

type IngestStatus string

const (
	StatusCompleted IngestStatus = "completed"
	StatusFailed    IngestStatus = "failed"
)

// PanoramaRecord is the persisted ingest-history row.
type PanoramaRecord struct {
	ID               string
	OriginalFilename string
	OriginalSize     int64
	SourceKind       SourceKind
	Status           IngestStatus
	Error            string
	Warnings         []string
	HighURL          string
	MediumURL        string
	LowURL           string
	CreatedAt        time.Time
}

// IngestEvent is published to the results topic after every terminal
// ingest state.
type IngestEvent struct {
	ID         string            `json:"id"`
	PanoramaID string            `json:"panorama_id"`
	Filename   string            `json:"filename"`
	Status     IngestStatus      `json:"status"`
	URLs       map[string]string `json:"urls,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
	Error      string            `json:"error,omitempty"`
	HappenedAt int64             `json:"happened_at"`
}

// NewPanoramaID returns a ULID: millisecond timestamp plus random
// suffix, unique without coordination and usable verbatim as a storage
// path prefix.
func NewPanoramaID() string {
	return ulid.Make().String()
}

const (
	DefaultMaxUploadSize   = 200 << 20
	DefaultMinSegmentBytes = 50 << 10
	DefaultMinSourceBytes  = 500 << 10
)

const (
	PathPrefixPanoramas = "panoramas/"
	EncodedExt          = ".webp"
	EncodedMimeType     = "image/webp"
)

// Equirectangular panoramas are expected at 2:1; ratios inside the band
// pass without comment.
const (
	MinAspectRatio = 1.8
	MaxAspectRatio = 2.2
)

// RawExtensions are the proprietary container suffixes handled via
// embedded-preview extraction.
var RawExtensions = map[string]bool{
	".dng": true,
	".cr2": true,
	".cr3": true,
	".nef": true,
	".arw": true,
	".raf": true,
	".orf": true,
	".rw2": true,
}

// DirectExtensions decode without extraction.
var DirectExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

func AllowedExtension(ext string) bool {
	return DirectExtensions[ext] || RawExtensions[ext]
}

const (
	WarningRawPreview = "RAW-Datei erkannt: Es wurde die eingebettete Vorschau verwendet, nicht die vollen Sensordaten. " +
		"Für beste Qualität bitte ein als JPEG oder TIFF exportiertes Bild hochladen."
	WarningAspectRatioFmt = "Seitenverhältnis %.2f:1 weicht vom erwarteten 2:1 für equirektangulare Panoramen ab. " +
		"Das Bild wird im 360°-Viewer möglicherweise nicht korrekt dargestellt."
)
