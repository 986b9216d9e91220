// Package logo is the image-upload collaborator for company logos: it
// validates an uploaded file and converts it into the embeddable data URI
// stored in CompanyProfile.Logo.
package logo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/disintegration/imaging"
)

// MaxSize is the upload limit for logo images.
const MaxSize = 2 * 1024 * 1024

var (
	ErrTooLarge    = errors.New("Image size must be less than 2MB")
	ErrInvalidType = errors.New("Please upload a valid image file (PNG, JPG, GIF, WebP)")
)

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// decodable marks the types the Go image stack can open; WebP is accepted on
// sniffing alone.
var decodable = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
}

// Validate checks size and content type of an uploaded image. The type is
// sniffed from the bytes, never trusted from the request, and raster formats
// we can open get a decode sanity check on top.
func Validate(data []byte) (contentType string, err error) {
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}
	contentType = http.DetectContentType(data)
	if !allowedTypes[contentType] {
		return "", ErrInvalidType
	}
	if decodable[contentType] {
		if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
			return "", ErrInvalidType
		}
	}
	return contentType, nil
}

// DataURI validates the image and returns the base64 data URI to embed in a
// company profile.
func DataURI(data []byte) (string, error) {
	contentType, err := Validate(data)
	if err != nil {
		return "", err
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
