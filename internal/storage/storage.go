// Package storage uploads generated images to object storage and derives their URLs.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"graphics-server/internal/models"
)

// ObjectStorage stores image bytes under a key.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Delete succeeds when the object does not exist.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the direct URL of key, or "" when the backend has none.
	PublicURL(key string) string
}

// URLSigner produces time-limited CDN URLs. ok is false when signing is unavailable.
type URLSigner interface {
	Sign(key string) (url string, ok bool)
}

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// ExtensionFor maps a mime type to a file extension, defaulting to png.
func ExtensionFor(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if ext, ok := extensions[mt]; ok {
		return ext
	}
	return "png"
}

// ImageKey builds spaces/{spaceId}/images/{epochMillis}_{seed}.{ext}.
func ImageKey(spaceID int64, now time.Time, seed int32, mimeType string) string {
	return fmt.Sprintf("spaces/%d/images/%d_%d.%s", spaceID, now.UnixMilli(), seed, ExtensionFor(mimeType))
}

// Disabled rejects uploads and ignores deletes.
type Disabled struct{}

var _ ObjectStorage = Disabled{}

func (Disabled) Put(context.Context, string, []byte, string) error {
	return models.ErrStorageNotConfigured
}

func (Disabled) Delete(context.Context, string) error { return nil }

func (Disabled) PublicURL(string) string { return "" }

// NoSigner never signs.
type NoSigner struct{}

func (NoSigner) Sign(string) (string, bool) { return "", false }
