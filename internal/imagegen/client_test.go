package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mood-canvas/internal/logger"
	"mood-canvas/internal/palette"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, string) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	c := NewClient(srv.URL+"/sdapi/v1/txt2img", DefaultParams(), NewStore(dir), 5*time.Second, logger.NoOp{})
	c.seed = func() int64 { return 42 }
	return c, dir
}

func TestGenerateSavesFirstImage(t *testing.T) {
	var got map[string]interface{}
	png := []byte("\x89PNG fake image")

	c, dir := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sdapi/v1/txt2img", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"images": []string{base64.StdEncoding.EncodeToString(png), "ignored"},
		})
	})

	res, err := c.Generate(context.Background(), palette.MustParseHex("#7F007F"))
	require.NoError(t, err)

	assert.Equal(t, "Generate an image with predominant color #7f007f", res.Prompt)
	assert.Equal(t, int64(42), res.Seed)
	assert.Equal(t, dir, filepath.Dir(res.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(res.Path), "output_"))
	assert.Equal(t, ".png", filepath.Ext(res.Path))

	saved, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, png, saved)

	assert.Equal(t, res.Prompt, got["prompt"])
	assert.Equal(t, 121.0, got["steps"])
	assert.Equal(t, 42.0, got["seed"])
	assert.Equal(t, "false", got["enable_hr"])
	assert.Equal(t, "0.7", got["denoising_strength"])
	assert.Equal(t, "7", got["cfg_scale"])
	assert.Equal(t, 666.0, got["width"])
	assert.Equal(t, 456.0, got["height"])
	assert.Equal(t, "true", got["restore_faces"])
}

func TestGenerateNoImages(t *testing.T) {
	c, dir := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"images": []}`))
	})

	_, err := c.Generate(context.Background(), palette.Fallback)
	assert.ErrorIs(t, err, ErrNoImages)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateHTTPError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	})

	_, err := c.Generate(context.Background(), palette.Fallback)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestGenerateBadBase64(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"images": ["%%%not-base64"]}`))
	})

	_, err := c.Generate(context.Background(), palette.Fallback)
	assert.Error(t, err)
}

func TestGenerateHonoursContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, palette.Fallback)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	path, err := NewStore(dir).Save([]byte("data"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStoreUniqueNames(t *testing.T) {
	s := NewStore(t.TempDir())
	a, err := s.Save([]byte("a"))
	require.NoError(t, err)
	b, err := s.Save([]byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
