// Package blob issues presigned URLs for payment slips and QR images
// stored in an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownKind = errors.New("unknown blob kind")
	ErrDisabled    = errors.New("blob storage is not configured")
)

// Kind namespaces keys by what they hold.
type Kind string

const (
	KindSlip   Kind = "slip"
	KindQR     Kind = "qr"
	KindAvatar Kind = "avatar"
)

// ParseKind converts a wire literal into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSlip, KindQR, KindAvatar:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// URL is a presigned URL with its expiry.
type URL struct {
	Key       string
	URL       string
	ExpiresAt time.Time
}

// Presigner hands out short-lived upload and download URLs.
type Presigner interface {
	// PresignPut allocates a fresh key under kind for ownerID and returns an upload URL.
	PresignPut(ctx context.Context, kind Kind, ownerID string) (URL, error)
	// PresignGet returns a download URL for an existing key.
	PresignGet(ctx context.Context, key string) (URL, error)
}

// NewKey builds "<kind>/<yyyy>/<mm>/<dd>/<owner>/<uuid>".
func NewKey(kind Kind, ownerID string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s/%s",
		kind, now.Year(), int(now.Month()), now.Day(), ownerID, uuid.New())
}

// OwnedBy reports whether key was allocated under kind for ownerID.
func OwnedBy(key string, kind Kind, ownerID string) bool {
	parts := strings.Split(key, "/")
	if len(parts) != 6 {
		return false
	}
	return parts[0] == string(kind) && parts[4] == ownerID && parts[5] != ""
}

// Disabled is the Presigner used when no bucket is configured.
type Disabled struct{}

func (Disabled) PresignPut(context.Context, Kind, string) (URL, error) {
	return URL{}, ErrDisabled
}

func (Disabled) PresignGet(context.Context, string) (URL, error) {
	return URL{}, ErrDisabled
}
