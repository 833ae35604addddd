package netx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownloadToFile(t *testing.T) {
	t.Run("success writes body", func(t *testing.T) {
		var gotMethod string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			_, _ = w.Write([]byte("pickled-weights"))
		}))
		defer ts.Close()

		dest := filepath.Join(t.TempDir(), "model.pkl")
		n, err := DownloadToFile(context.Background(), nil, ts.URL+"/media/models/model.pkl", dest)
		require.NoError(t, err)
		require.Equal(t, int64(len("pickled-weights")), n)
		require.Equal(t, http.MethodGet, gotMethod)

		b, err := os.ReadFile(dest)
		require.NoError(t, err)
		require.Equal(t, "pickled-weights", string(b))
	})

	t.Run("non-200 returns error and leaves nothing", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer ts.Close()

		dir := t.TempDir()
		dest := filepath.Join(dir, "model.pkl")
		_, err := DownloadToFile(context.Background(), ts.Client(), ts.URL, dest)
		require.Error(t, err)
		require.True(t, strings.Contains(err.Error(), "404"), "got %v", err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("x"))
		}))
		defer ts.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := DownloadToFile(ctx, nil, ts.URL, filepath.Join(t.TempDir(), "x"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestWriteFileAtomic_Overwrites(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "a.bin")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o600))

	n, err := WriteFileAtomic(dest, strings.NewReader("new!"))
	require.NoError(t, err)
	require.Equal(t, int64(4), n)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "new!", string(b))
}
