// Package media unifies uploaded files and captured camera frames into a
// single previewable asset shape.
package media

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyMedia is returned when an asset is created from zero bytes.
var ErrEmptyMedia = errors.New("media payload is empty")

// Asset is a locally held media payload plus a derived preview handle. It
// lives in memory only: replaced wholesale on re-select and released when the
// owning draft is reset or submitted.
type Asset struct {
	Name        string
	ContentType string
	Data        []byte

	previewURI string
	released   bool
}

// FromUpload builds an asset from a user-selected file. Name and content
// type come from the file itself; when the content type is missing it is
// guessed from the extension.
func FromUpload(name, contentType string, data []byte) (*Asset, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMedia
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "upload"
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return newAsset(name, contentType, data), nil
}

// FromCapture builds an asset from a camera frame already encoded as JPEG.
// The generated name embeds the capture timestamp.
func FromCapture(frame []byte, capturedAt time.Time) (*Asset, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyMedia
	}
	name := fmt.Sprintf("webcam-%d.jpg", capturedAt.UnixMilli())
	return newAsset(name, "image/jpeg", frame), nil
}

func newAsset(name, contentType string, data []byte) *Asset {
	return &Asset{
		Name:        name,
		ContentType: contentType,
		Data:        data,
		previewURI:  "mem://" + uuid.NewString(),
	}
}

// PreviewURI returns the displayable handle for the asset, or the empty
// string once the asset has been released.
func (a *Asset) PreviewURI() string {
	if a == nil || a.released {
		return ""
	}
	return a.previewURI
}

// Release frees the preview handle. Releasing twice is harmless.
func (a *Asset) Release() {
	if a == nil {
		return
	}
	a.released = true
	a.previewURI = ""
}

// Ext returns the asset's file extension without the leading dot, falling
// back to "bin" when the name carries none.
func (a *Asset) Ext() string {
	ext := strings.TrimPrefix(filepath.Ext(a.Name), ".")
	if ext == "" {
		return "bin"
	}
	return ext
}
