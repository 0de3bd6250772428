package dto

import "time"

// UploadResponse is the boundary contract of the ingestion core. On
// success exactly the keys high, medium and low are present in Images;
// multiple warnings are joined into the single Warning field while the
// full list stays available internally.
type UploadResponse struct {
	Success    bool              `json:"success"`
	PanoramaID string            `json:"panoramaId,omitempty"`
	Images     map[string]string `json:"images,omitempty"`
	Warning    string            `json:"warning,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type PanoramaResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	SourceKind string    `json:"sourceKind"`
	Status     string    `json:"status"`
	Warnings   []string  `json:"warnings,omitempty"`
	Images     ImageURLs `json:"images"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ImageURLs struct {
	High   string `json:"high,omitempty"`
	Medium string `json:"medium,omitempty"`
	Low    string `json:"low,omitempty"`
}

type ListRequest struct {
	Limit  int `validate:"min=1,max=100"`
	Offset int `validate:"min=0"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
