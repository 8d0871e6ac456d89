package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
	"github.com/angelmondragon/pawfinderz-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

var errClientNotInitialized = errors.New("gcs client not initialized")

// objectAPI is the slice of the JSON API the uploader needs.
type objectAPI interface {
	Insert(ctx context.Context, bucket, name, contentType string, body io.Reader) error
	Delete(ctx context.Context, bucket, name string) error
	BucketExists(ctx context.Context, bucket string) error
}

// Client stores public images in a single bucket.
type Client struct {
	api           objectAPI
	bucket        string
	publicBaseURL string
	prefix        string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient builds a storage client from config and verifies the bucket.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	opts := append(clientOptions(gcp), extra...)
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage service: %w", err)
	}

	client := newClient(&jsonAPI{svc: svc}, cfg)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

func newClient(api objectAPI, cfg config.GCSConfig) *Client {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return &Client{
		api:           api,
		bucket:        cfg.BucketName,
		publicBaseURL: base,
		prefix:        strings.Trim(cfg.ObjectPrefix, "/"),
	}
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(storage.DevstorageReadWriteScope)}
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}

// ObjectName builds a unique object key under the configured prefix.
func (c *Client) ObjectName(ext string, now time.Time) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	return path.Join(c.prefix, now.UTC().Format("2006/01"), name)
}

// PublicURL is the browser-facing URL of an object.
func (c *Client) PublicURL(name string) string {
	escaped := make([]string, 0, 4)
	for _, part := range strings.Split(name, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, strings.Join(escaped, "/"))
}

// Upload writes body as name and returns its public URL.
func (c *Client) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if c == nil || c.api == nil {
		return "", errClientNotInitialized
	}
	if name == "" {
		return "", errors.New("object name is required")
	}
	if err := c.api.Insert(ctx, c.bucket, name, contentType, body); err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	return c.PublicURL(name), nil
}

// Delete removes an object. Missing objects are not an error.
func (c *Client) Delete(ctx context.Context, name string) error {
	if c == nil || c.api == nil {
		return errClientNotInitialized
	}
	err := c.api.Delete(ctx, c.bucket, name)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 404 {
		return nil
	}
	return err
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errClientNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.api.BucketExists(ctx, c.bucket)
}

type jsonAPI struct {
	svc *storage.Service
}

func (j *jsonAPI) Insert(ctx context.Context, bucket, name, contentType string, body io.Reader) error {
	obj := &storage.Object{Name: name, ContentType: contentType, CacheControl: "public, max-age=86400"}
	_, err := j.svc.Objects.Insert(bucket, obj).
		Media(body, googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	return err
}

func (j *jsonAPI) Delete(ctx context.Context, bucket, name string) error {
	return j.svc.Objects.Delete(bucket, name).Context(ctx).Do()
}

func (j *jsonAPI) BucketExists(ctx context.Context, bucket string) error {
	_, err := j.svc.Buckets.Get(bucket).Context(ctx).Do()
	return err
}
