package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const testContent = "jre bits and pieces"

// SHA-1 of testContent.
const testContentSHA1 = "3c04e2096ba549d8a77d51949bf48adfadeb79a8"

func newFileServer(t *testing.T, body string, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}

		_, err := w.Write([]byte(body))
		require.NoError(t, err)
	}))

	t.Cleanup(server.Close)

	return server
}

func TestDownloadWritesFile(t *testing.T) {
	t.Parallel()

	server := newFileServer(t, testContent, nil)
	destination := filepath.Join(t.TempDir(), "runtime", "bin", "java")

	client := NewClient(WithRetryMax(0))
	err := client.Download(context.Background(), &Request{
		URLs:        []string{server.URL + "/java"},
		Destination: destination,
		Validator:   NewChecksumValidator(AlgorithmSHA1, testContentSHA1),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, testContent, string(data))

	_, err = os.Stat(destination + pendingSuffix)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDownloadAppliesMode(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	server := newFileServer(t, testContent, nil)
	destination := filepath.Join(t.TempDir(), "java")

	client := NewClient(WithRetryMax(0))
	err := client.Download(context.Background(), &Request{
		URLs:        []string{server.URL + "/java"},
		Destination: destination,
		Mode:        0o755,
	})
	require.NoError(t, err)

	info, err := os.Stat(destination)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestDownloadSkipsExistingValidFile(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	server := newFileServer(t, testContent, &hits)
	destination := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(destination, []byte(testContent), 0o644))

	client := NewClient(WithRetryMax(0))
	err := client.Download(context.Background(), &Request{
		URLs:        []string{server.URL + "/java"},
		Destination: destination,
		Validator:   NewChecksumValidator(AlgorithmSHA1, testContentSHA1),
	})
	require.NoError(t, err)
	require.Zero(t, hits.Load(), "a valid existing file must not be fetched again")
}

func TestDownloadReplacesInvalidFile(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	server := newFileServer(t, testContent, &hits)
	destination := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(destination, []byte("stale garbage"), 0o644))

	client := NewClient(WithRetryMax(0))
	err := client.Download(context.Background(), &Request{
		URLs:        []string{server.URL + "/java"},
		Destination: destination,
		Validator:   NewChecksumValidator(AlgorithmSHA1, testContentSHA1),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), hits.Load())

	data, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, testContent, string(data))
}

func TestDownloadFallsBackToNextURL(t *testing.T) {
	t.Parallel()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(broken.Close)

	var hits atomic.Int64

	healthy := newFileServer(t, testContent, &hits)
	destination := filepath.Join(t.TempDir(), "java")

	client := NewClient(WithRetryMax(0))
	err := client.Download(context.Background(), &Request{
		URLs:        []string{broken.URL + "/java", healthy.URL + "/java"},
		Destination: destination,
		Validator:   NewChecksumValidator(AlgorithmSHA1, testContentSHA1),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), hits.Load())
}

func TestDownloadAggregatesURLFailures(t *testing.T) {
	t.Parallel()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(broken.Close)

	client := NewClient(WithRetryMax(0))
	err := client.Download(context.Background(), &Request{
		URLs:        []string{broken.URL + "/first", broken.URL + "/second"},
		Destination: filepath.Join(t.TempDir(), "java"),
	})
	require.ErrorIs(t, err, errUnexpectedStatus)
	require.Contains(t, err.Error(), "/first")
	require.Contains(t, err.Error(), "/second")
}

func TestDownloadChecksumMismatch(t *testing.T) {
	t.Parallel()

	server := newFileServer(t, "not what you ordered", nil)
	destination := filepath.Join(t.TempDir(), "java")

	client := NewClient(WithRetryMax(0))
	err := client.Download(context.Background(), &Request{
		URLs:        []string{server.URL + "/java"},
		Destination: destination,
		Validator:   NewChecksumValidator(AlgorithmSHA1, testContentSHA1),
	})
	require.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = os.Stat(destination)
	require.ErrorIs(t, err, os.ErrNotExist, "a failed download must not leave a destination file")

	_, err = os.Stat(destination + pendingSuffix)
	require.ErrorIs(t, err, os.ErrNotExist, "a failed download must not leave a pending file")
}

func TestDownloadReportsProgress(t *testing.T) {
	t.Parallel()

	server := newFileServer(t, testContent, nil)
	destination := filepath.Join(t.TempDir(), "java")

	var events []ProgressEvent

	client := NewClient(WithRetryMax(0))
	err := client.Download(context.Background(), &Request{
		URLs:        []string{server.URL + "/java"},
		Destination: destination,
		Progress: func(event ProgressEvent) {
			events = append(events, event)
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)

	require.Zero(t, events[0].Delta, "the opening event carries no payload")
	require.Equal(t, int64(len(testContent)), events[0].Total)

	var sum int64
	for _, event := range events {
		sum += event.Delta
	}

	require.Equal(t, int64(len(testContent)), sum)
	require.Equal(t, int64(len(testContent)), events[len(events)-1].Written)
}

func TestDownloadRejectsEmptyRequests(t *testing.T) {
	t.Parallel()

	client := NewClient()

	err := client.Download(context.Background(), &Request{Destination: "somewhere"})
	require.ErrorIs(t, err, errNoURLs)

	err = client.Download(context.Background(), &Request{URLs: []string{"http://localhost/x"}})
	require.ErrorIs(t, err, errNoDestination)
}

func TestDownloadHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(WithRetryMax(0))
	err := client.Download(ctx, &Request{
		URLs:        []string{"http://localhost:1/java"},
		Destination: filepath.Join(t.TempDir(), "java"),
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestGetJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"name": "java-runtime-beta", "version": 17}`))
		require.NoError(t, err)
	}))
	t.Cleanup(server.Close)

	var payload struct {
		Name    string `json:"name"`
		Version int    `json:"version"`
	}

	client := NewClient(WithRetryMax(0))
	require.NoError(t, client.GetJSON(context.Background(), server.URL, &payload))
	require.Equal(t, "java-runtime-beta", payload.Name)
	require.Equal(t, 17, payload.Version)
}

func TestGetJSONRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	var payload map[string]any

	client := NewClient(WithRetryMax(0))
	err := client.GetJSON(context.Background(), server.URL, &payload)
	require.ErrorIs(t, err, errUnexpectedStatus)
}
