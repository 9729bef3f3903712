package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/farxc/checklist_export/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	ErrNotSpreadsheet = errors.New("payload is not an xlsx document")
	ErrTooLarge       = errors.New("payload exceeds size limit")
)

// zipMagic opens every OOXML package.
var zipMagic = []byte("PK\x03\x04")

const userAgent = "checklist-export/1.0 (+template-locator)"

// Source is one place a template may be found.
type Source interface {
	// Describe names the source in logs and in the export outcome.
	Describe() string
	Fetch(ctx context.Context, maxBytes int64) ([]byte, error)
}

// FileSource reads a template from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Describe() string { return "file:" + s.Path }

func (s FileSource) Fetch(ctx context.Context, maxBytes int64) ([]byte, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", s.Path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

// HTTPSource downloads a template with a single GET.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Describe() string { return "url:" + s.URL }

func (s HTTPSource) Fetch(ctx context.Context, maxBytes int64) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-OK HTTP response: status=%s", resp.Status)
	}
	if maxBytes > 0 && resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	return readLimited(resp.Body, maxBytes)
}

// ObjectSource downloads a template object from MinIO or any S3 endpoint.
type ObjectSource struct {
	client *minio.Client
	bucket string
	object string
}

// NewObjectSource builds the client; no request is made until Fetch.
func NewObjectSource(cfg config.ObjectStoreConfig) (*ObjectSource, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &ObjectSource{client: client, bucket: cfg.Bucket, object: cfg.Object}, nil
}

func (s *ObjectSource) Describe() string {
	return fmt.Sprintf("s3:%s/%s/%s", s.client.EndpointURL().Host, s.bucket, s.object)
}

func (s *ObjectSource) Fetch(ctx context.Context, maxBytes int64) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}
	if maxBytes > 0 && info.Size > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size)
	}

	return readLimited(obj, maxBytes)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}

func validate(data []byte) error {
	if !bytes.HasPrefix(data, zipMagic) {
		return ErrNotSpreadsheet
	}
	return nil
}
