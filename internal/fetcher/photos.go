package fetcher

import (
	"encoding/base64"
	"fmt"
	"strings"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// validates client-supplied data URIs and keeps the first MaxPhotos
func Photos(dataURIs []string) ([]Image, error) {
	if len(dataURIs) == 0 {
		return nil, fmt.Errorf("%w: no photos supplied", ErrFetch)
	}

	if len(dataURIs) > MaxPhotos {
		dataURIs = dataURIs[:MaxPhotos]
	}

	images := make([]Image, 0, len(dataURIs))
	for i, uri := range dataURIs {
		img, err := decodeDataURI(uri)
		if err != nil {
			return nil, fmt.Errorf("%w: photo %d: %v", ErrFetch, i+1, err)
		}
		images = append(images, img)
	}

	return images, nil
}

func decodeDataURI(uri string) (Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return Image{}, fmt.Errorf("not a data URI")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("malformed data URI")
	}

	mediaType, encoding, _ := strings.Cut(meta, ";")
	mediaType = strings.ToLower(mediaType)
	if mediaType == "image/jpg" {
		mediaType = "image/jpeg"
	}

	if !allowedImageTypes[mediaType] {
		return Image{}, fmt.Errorf("unsupported media type %q", mediaType)
	}

	if encoding != "base64" {
		return Image{}, fmt.Errorf("photo must be base64 encoded")
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("invalid base64 payload")
	}

	if len(decoded) == 0 {
		return Image{}, fmt.Errorf("empty photo")
	}

	if len(decoded) > MaxPhotoBytes {
		return Image{}, fmt.Errorf("photo exceeds %d bytes", MaxPhotoBytes)
	}

	return Image{MediaType: mediaType, Data: payload}, nil
}
