package templates

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/farxc/checklist_export/internal/config"
	"github.com/farxc/checklist_export/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func xlsxBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "plantilla"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLocateFirstExistingLocalPathWins(t *testing.T) {
	data := xlsxBytes(t)
	second := writeFile(t, "b.xlsx", data)
	third := writeFile(t, "c.xlsx", data)

	loc := New([]Source{
		FileSource{Path: filepath.Join(t.TempDir(), "missing.xlsx")},
		FileSource{Path: second},
		FileSource{Path: third},
	}, time.Second, 0, logger.NewNop())

	res := loc.Locate(context.Background())
	require.True(t, res.Available())
	assert.Equal(t, "file:"+second, res.Source)
	assert.Equal(t, data, res.Data)
	require.Len(t, res.Attempts, 2)
	assert.ErrorIs(t, res.Attempts[0].Err, os.ErrNotExist)
	assert.NoError(t, res.Attempts[1].Err)
	assert.Equal(t, len(data), res.Attempts[1].Bytes)
}

func TestLocateFallsBackToRemoteURL(t *testing.T) {
	data := xlsxBytes(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Write(data)
	}))
	defer srv.Close()

	loc, err := FromConfig(config.TemplateConfig{
		LocalPaths:     []string{filepath.Join(t.TempDir(), "none.xlsx")},
		RemoteURL:      srv.URL + "/checklist.xlsx",
		RequestTimeout: time.Second,
		MaxBytes:       config.DefaultTemplateMaxBytes,
	}, logger.NewNop())
	require.NoError(t, err)

	res := loc.Locate(context.Background())
	require.True(t, res.Available())
	assert.Equal(t, "url:"+srv.URL+"/checklist.xlsx", res.Source)
	assert.Equal(t, int32(1), hits.Load(), "remote source is fetched once")
}

func TestLocateUnavailableIsAResultNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	loc := New([]Source{
		FileSource{Path: filepath.Join(t.TempDir(), "none.xlsx")},
		HTTPSource{URL: srv.URL},
	}, time.Second, 0, logger.NewNop())

	res := loc.Locate(context.Background())
	assert.False(t, res.Available())
	assert.Equal(t, Unavailable, res.Status)
	assert.Equal(t, "unavailable", res.Status.String())
	require.Len(t, res.Attempts, 2)
	assert.ErrorContains(t, res.Attempts[1].Err, "404")
}

func TestLocateRejectsNonSpreadsheetPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>mantenimiento</html>"))
	}))
	defer srv.Close()

	good := writeFile(t, "ok.xlsx", xlsxBytes(t))
	loc := New([]Source{
		FileSource{Path: writeFile(t, "corrupt.xlsx", []byte("not a zip"))},
		HTTPSource{URL: srv.URL},
		FileSource{Path: good},
	}, time.Second, 0, logger.NewNop())

	res := loc.Locate(context.Background())
	require.True(t, res.Available())
	assert.Equal(t, "file:"+good, res.Source)
	assert.ErrorIs(t, res.Attempts[0].Err, ErrNotSpreadsheet)
	assert.ErrorIs(t, res.Attempts[1].Err, ErrNotSpreadsheet)
}

func TestLocateEnforcesSizeLimit(t *testing.T) {
	data := xlsxBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	loc := New([]Source{
		FileSource{Path: writeFile(t, "big.xlsx", data)},
		HTTPSource{URL: srv.URL},
	}, time.Second, 16, logger.NewNop())

	res := loc.Locate(context.Background())
	assert.False(t, res.Available())
	for _, a := range res.Attempts {
		assert.ErrorIs(t, a.Err, ErrTooLarge, a.Source)
	}
}

func TestLocateRemoteTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	loc := New([]Source{HTTPSource{URL: srv.URL}}, 50*time.Millisecond, 0, logger.NewNop())

	start := time.Now()
	res := loc.Locate(context.Background())
	assert.False(t, res.Available())
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, errors.Is(res.Attempts[0].Err, context.DeadlineExceeded))
}

func TestLocateStopsWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loc := New([]Source{FileSource{Path: writeFile(t, "a.xlsx", xlsxBytes(t))}}, time.Second, 0, logger.NewNop())
	res := loc.Locate(ctx)
	assert.False(t, res.Available())
	assert.Empty(t, res.Attempts)
}

func TestFromConfigBuildsOrderedChain(t *testing.T) {
	loc, err := FromConfig(config.TemplateConfig{
		LocalPaths: []string{"/a.xlsx", "", "/b.xlsx"},
		ObjectStore: config.ObjectStoreConfig{
			Endpoint: "minio.local:9000",
			Bucket:   "plantillas",
			Object:   "checklist.xlsx",
		},
		RemoteURL: "https://cdn.example.gov.co/checklist.xlsx",
	}, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"file:/a.xlsx",
		"file:/b.xlsx",
		"s3:minio.local:9000/plantillas/checklist.xlsx",
		"url:https://cdn.example.gov.co/checklist.xlsx",
	}, loc.Sources())
}

func TestFileSourceRejectsDirectory(t *testing.T) {
	_, err := FileSource{Path: t.TempDir()}.Fetch(context.Background(), 0)
	assert.ErrorContains(t, err, "not a regular file")
}

// s3Stub serves one object the way an S3 endpoint does, plus the bucket
// location lookup the minio client makes before its first request.
func s3Stub(t *testing.T, bucket, object string, data []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var gets atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["location"]; ok {
			w.Header().Set("Content-Type", "application/xml")
			w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
				`<LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`))
			return
		}
		if r.URL.Path != "/"+bucket+"/"+object {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
				`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
			return
		}
		if r.Method == http.MethodGet {
			gets.Add(1)
		}
		w.Header().Set("ETag", `"5d41402abc4b2a76b9719d911017c592"`)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		http.ServeContent(w, r, object, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), bytes.NewReader(data))
	}))
	t.Cleanup(srv.Close)
	return srv, &gets
}

func objectSource(t *testing.T, srv *httptest.Server, bucket, object string) *ObjectSource {
	t.Helper()
	src, err := NewObjectSource(config.ObjectStoreConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    bucket,
		Object:    object,
	})
	require.NoError(t, err)
	return src
}

func TestLocateReadsObjectStore(t *testing.T) {
	data := xlsxBytes(t)
	srv, gets := s3Stub(t, "plantillas", "checklist.xlsx", data)

	loc := New([]Source{
		FileSource{Path: filepath.Join(t.TempDir(), "none.xlsx")},
		objectSource(t, srv, "plantillas", "checklist.xlsx"),
	}, 5*time.Second, config.DefaultTemplateMaxBytes, logger.NewNop())

	res := loc.Locate(context.Background())
	require.True(t, res.Available())
	assert.Equal(t, data, res.Data)
	assert.True(t, strings.HasPrefix(res.Source, "s3:"), res.Source)
	assert.True(t, strings.HasSuffix(res.Source, "/plantillas/checklist.xlsx"), res.Source)
	require.Len(t, res.Attempts, 2)
	assert.NoError(t, res.Attempts[1].Err)
	assert.GreaterOrEqual(t, gets.Load(), int32(1))
}

func TestLocateObjectStoreFailuresFallThrough(t *testing.T) {
	data := xlsxBytes(t)
	good := writeFile(t, "ok.xlsx", data)

	t.Run("oversized object", func(t *testing.T) {
		padded := append(append([]byte{}, data...), bytes.Repeat([]byte{0}, 4096)...)
		srv, _ := s3Stub(t, "plantillas", "checklist.xlsx", padded)

		loc := New([]Source{
			objectSource(t, srv, "plantillas", "checklist.xlsx"),
			FileSource{Path: good},
		}, 5*time.Second, int64(len(data)), logger.NewNop())

		res := loc.Locate(context.Background())
		require.True(t, res.Available())
		assert.Equal(t, "file:"+good, res.Source)
		require.Len(t, res.Attempts, 2)
		assert.ErrorIs(t, res.Attempts[0].Err, ErrTooLarge)
	})

	t.Run("missing object", func(t *testing.T) {
		srv, gets := s3Stub(t, "plantillas", "checklist.xlsx", data)

		loc := New([]Source{
			objectSource(t, srv, "plantillas", "otra.xlsx"),
			FileSource{Path: good},
		}, 5*time.Second, config.DefaultTemplateMaxBytes, logger.NewNop())

		res := loc.Locate(context.Background())
		require.True(t, res.Available())
		assert.Equal(t, "file:"+good, res.Source)
		require.Len(t, res.Attempts, 2)
		assert.Error(t, res.Attempts[0].Err)
		assert.Zero(t, gets.Load())
	})
}

func TestLocateLogsMissingPathAtInfo(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewWithCore(core)
	log.SetLogLevel(logger.LevelInfo)

	missing := filepath.Join(t.TempDir(), "missing.xlsx")
	loc := New([]Source{FileSource{Path: missing}}, time.Second, 0, log)
	loc.Locate(context.Background())

	entries := logs.FilterMessageSnippet("Template not present").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "file:"+missing)
}
