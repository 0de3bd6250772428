package extractor

import "errors"

var ErrNoDecodableImage = errors.New("no decodable image")
