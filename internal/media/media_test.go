package media

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFromUpload(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		wantName    string
		wantType    string
	}{
		{
			name:        "explicit content type wins",
			fileName:    "sunset.png",
			contentType: "image/png",
			wantName:    "sunset.png",
			wantType:    "image/png",
		},
		{
			name:     "content type guessed from extension",
			fileName: "clip.jpg",
			wantName: "clip.jpg",
			wantType: "image/jpeg",
		},
		{
			name:     "unknown extension falls back to octet stream",
			fileName: "mystery.xyzzy",
			wantName: "mystery.xyzzy",
			wantType: "application/octet-stream",
		},
		{
			name:     "blank name gets a default",
			fileName: "   ",
			wantName: "upload",
			wantType: "application/octet-stream",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := FromUpload(tt.fileName, tt.contentType, []byte("payload"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if asset.Name != tt.wantName {
				t.Fatalf("expected name %q, got %q", tt.wantName, asset.Name)
			}
			if asset.ContentType != tt.wantType {
				t.Fatalf("expected content type %q, got %q", tt.wantType, asset.ContentType)
			}
			if asset.PreviewURI() == "" {
				t.Fatal("expected a preview URI")
			}
		})
	}
}

func TestFromUploadEmpty(t *testing.T) {
	if _, err := FromUpload("a.jpg", "image/jpeg", nil); !errors.Is(err, ErrEmptyMedia) {
		t.Fatalf("expected ErrEmptyMedia, got %v", err)
	}
}

func TestFromCapture(t *testing.T) {
	capturedAt := time.UnixMilli(1712345678901)
	asset, err := FromCapture([]byte{0xff, 0xd8}, capturedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asset.Name != "webcam-1712345678901.jpg" {
		t.Fatalf("unexpected capture name %q", asset.Name)
	}
	if asset.ContentType != "image/jpeg" {
		t.Fatalf("unexpected content type %q", asset.ContentType)
	}
}

func TestFromCaptureEmpty(t *testing.T) {
	if _, err := FromCapture(nil, time.Now()); !errors.Is(err, ErrEmptyMedia) {
		t.Fatalf("expected ErrEmptyMedia, got %v", err)
	}
}

func TestPreviewURIRelease(t *testing.T) {
	asset, err := FromUpload("pic.jpg", "", []byte("data"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	uri := asset.PreviewURI()
	if !strings.HasPrefix(uri, "mem://") {
		t.Fatalf("expected mem:// preview, got %q", uri)
	}

	asset.Release()
	if asset.PreviewURI() != "" {
		t.Fatal("expected empty preview after release")
	}
	// Releasing twice is harmless.
	asset.Release()
}

func TestExt(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.jpeg", "jpeg"},
		{"archive.tar.gz", "gz"},
		{"noext", "bin"},
	}
	for _, tt := range tests {
		asset := &Asset{Name: tt.name}
		if got := asset.Ext(); got != tt.want {
			t.Fatalf("Ext(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
