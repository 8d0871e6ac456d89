package gcs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/angelmondragon/pawfinderz-backend/pkg/config"
)

type fakeAPI struct {
	objects   map[string]string
	types     map[string]string
	deleteErr error
	bucketErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{objects: map[string]string{}, types: map[string]string{}}
}

func (f *fakeAPI) Insert(ctx context.Context, bucket, name, contentType string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+name] = string(b)
	f.types[bucket+"/"+name] = contentType
	return nil
}

func (f *fakeAPI) Delete(ctx context.Context, bucket, name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, bucket+"/"+name)
	return nil
}

func (f *fakeAPI) BucketExists(ctx context.Context, bucket string) error {
	return f.bucketErr
}

func testClient(api objectAPI) *Client {
	return newClient(api, config.GCSConfig{
		BucketName:    "paw-images",
		PublicBaseURL: "https://cdn.example.com/",
		ObjectPrefix:  "/uploads/",
	})
}

func TestUploadReturnsPublicURL(t *testing.T) {
	api := newFakeAPI()
	client := testClient(api)

	name := client.ObjectName(".PNG", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))
	if !strings.HasPrefix(name, "uploads/2026/03/") || !strings.HasSuffix(name, ".png") {
		t.Fatalf("unexpected object name %s", name)
	}

	url, err := client.Upload(context.Background(), name, "image/png", strings.NewReader("pixels"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://cdn.example.com/paw-images/"+name {
		t.Fatalf("unexpected url %s", url)
	}
	if api.objects["paw-images/"+name] != "pixels" || api.types["paw-images/"+name] != "image/png" {
		t.Fatalf("object not stored as expected: %v", api.objects)
	}
}

func TestDeleteIgnoresMissingObjects(t *testing.T) {
	api := newFakeAPI()
	api.deleteErr = &googleapi.Error{Code: http.StatusNotFound}
	client := testClient(api)
	if err := client.Delete(context.Background(), "uploads/x.png"); err != nil {
		t.Fatalf("missing objects should not fail delete: %v", err)
	}

	api.deleteErr = &googleapi.Error{Code: http.StatusForbidden}
	if err := client.Delete(context.Background(), "uploads/x.png"); err == nil {
		t.Fatal("expected permission errors to surface")
	}
}

func TestPingSurfacesBucketErrors(t *testing.T) {
	api := newFakeAPI()
	client := testClient(api)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	api.bucketErr = errors.New("no such bucket")
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}

	var nilClient *Client
	if err := nilClient.Ping(context.Background()); !errors.Is(err, errClientNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
}

func TestPublicURLEscapesSegments(t *testing.T) {
	client := testClient(newFakeAPI())
	got := client.PublicURL("uploads/my cat.png")
	if got != "https://cdn.example.com/paw-images/uploads/my%20cat.png" {
		t.Fatalf("unexpected url %s", got)
	}
}

func TestNewClientChecksBucket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/b/paw-images") {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"name":"paw-images"}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := config.GCSConfig{BucketName: "paw-images"}
	client, err := NewClient(context.Background(), cfg, config.GCPConfig{}, nil,
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.publicBaseURL != "https://storage.googleapis.com" {
		t.Fatalf("expected default public base, got %s", client.publicBaseURL)
	}

	if _, err := NewClient(context.Background(), config.GCSConfig{}, config.GCPConfig{}, nil); err == nil {
		t.Fatal("expected error without bucket")
	}
}
