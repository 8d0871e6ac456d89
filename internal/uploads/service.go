// Package uploads accepts image uploads and stores them in object storage.
package uploads

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	pkgAuth "github.com/angelmondragon/pawfinderz-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/pawfinderz-backend/pkg/errors"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
	"github.com/angelmondragon/pawfinderz-backend/pkg/metrics"
)

const defaultMaxBytes = 5 << 20

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// objectStore is the storage surface the service needs; *gcs.Client
// satisfies it.
type objectStore interface {
	ObjectName(ext string, now time.Time) string
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// Result is the body of a successful upload.
type Result struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// Base64Input is the JSON upload form.
type Base64Input struct {
	Data     string `json:"data" validate:"required"`
	Filename string `json:"filename,omitempty" validate:"omitempty,max=255"`
}

type Service interface {
	Upload(ctx context.Context, actor pkgAuth.Actor, data []byte) (*Result, error)
	MaxBytes() int64
}

type ServiceParams struct {
	Store    objectStore
	MaxBytes int64
	Metrics  *metrics.DomainMetrics
	Logger   *logger.Logger
}

type service struct {
	store    objectStore
	maxBytes int64
	metrics  *metrics.DomainMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the upload service. A nil store is allowed and makes
// every upload fail as a dependency error.
func NewService(params ServiceParams) Service {
	limit := params.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		store:    params.Store,
		maxBytes: limit,
		metrics:  params.Metrics,
		logg:     logg,
		now:      time.Now,
	}
}

func (s *service) MaxBytes() int64 {
	return s.maxBytes
}

func (s *service) Upload(ctx context.Context, actor pkgAuth.Actor, data []byte) (*Result, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if s.store == nil {
		s.metrics.Upload("unavailable")
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "uploads are not configured")
	}
	if len(data) == 0 {
		s.metrics.Upload("rejected")
		return nil, pkgerrors.Validation("no image provided")
	}
	if int64(len(data)) > s.maxBytes {
		s.metrics.Upload("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeTooLarge, fmt.Sprintf("image exceeds the %dMB limit", s.maxBytes>>20))
	}

	mt := mimetype.Detect(data)
	contentType := mt.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !allowedTypes[contentType] {
		s.metrics.Upload("rejected")
		return nil, pkgerrors.Validation("only image uploads are allowed").
			WithDetails(map[string]any{"contentType": contentType})
	}

	name := s.store.ObjectName(mt.Extension(), s.now())
	url, err := s.store.Upload(ctx, name, contentType, bytes.NewReader(data))
	if err != nil {
		s.metrics.Upload("failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}
	s.metrics.Upload("ok")
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id":      actor.UserID.String(),
		"object":       name,
		"content_type": contentType,
		"size":         len(data),
	}), "upload.stored")

	return &Result{URL: url, ContentType: contentType, Size: len(data)}, nil
}

// DecodeBase64 accepts raw base64 or a data URI and returns the bytes. The
// decoded size is checked against limit before decoding.
func DecodeBase64(value string, limit int64) ([]byte, error) {
	payload := strings.TrimSpace(value)
	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, ",")
		if i < 0 || !strings.Contains(payload[:i], ";base64") {
			return nil, pkgerrors.Validation("data must be base64 encoded")
		}
		payload = payload[i+1:]
	}
	if payload == "" {
		return nil, pkgerrors.Validation("no image provided")
	}
	if limit > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > limit+2 {
		return nil, pkgerrors.New(pkgerrors.CodeTooLarge, fmt.Sprintf("image exceeds the %dMB limit", limit>>20))
	}
	out, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		out, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return nil, pkgerrors.Validation("data must be base64 encoded")
	}
	return out, nil
}
