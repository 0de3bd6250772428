package panorama

import "errors"

var ErrPanoramaNotFound = errors.New("panorama not found")
