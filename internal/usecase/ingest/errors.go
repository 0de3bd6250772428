package ingest

import "errors"

var (
	ErrInvalidUpload      = errors.New("invalid upload")
	ErrHistoryUnavailable = errors.New("ingest history not available")
)
