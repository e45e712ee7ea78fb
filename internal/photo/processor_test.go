package photo

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, dir, name string, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestProcessor_ProcessFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTestPNG(t, dir, "a.png", color.RGBA{R: 255, A: 255}),
		writeTestPNG(t, dir, "b.png", color.RGBA{G: 255, A: 255}),
		writeTestPNG(t, dir, "c.png", color.RGBA{B: 255, A: 255}),
	}

	proc := NewProcessor(70, 2, log.New(&bytes.Buffer{}, "", 0))
	urls, err := proc.ProcessFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, urls, 3)

	for _, url := range urls {
		assert.True(t, IsDataURL(url))
		assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
	}
}

func TestProcessor_MissingFileFailsAll(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTestPNG(t, dir, "a.png", color.RGBA{R: 255, A: 255}),
		filepath.Join(dir, "missing.png"),
	}

	proc := NewProcessor(70, 2, log.New(&bytes.Buffer{}, "", 0))
	urls, err := proc.ProcessFiles(context.Background(), paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.png")
	assert.Nil(t, urls)
}

func TestProcessor_UndecodableFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))

	proc := NewProcessor(70, 2, log.New(&bytes.Buffer{}, "", 0))
	_, err := proc.ProcessFiles(context.Background(), []string{bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestProcessor_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "a.png", color.RGBA{R: 255, A: 255})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proc := NewProcessor(70, 1, log.New(&bytes.Buffer{}, "", 0))
	_, err := proc.ProcessFiles(ctx, []string{path, path, path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_EmptyInput(t *testing.T) {
	proc := NewProcessor(0, 0, nil) // exercises the defaults
	urls, err := proc.ProcessFiles(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestIsDataURL(t *testing.T) {
	assert.True(t, IsDataURL("data:image/jpeg;base64,AAAA"))
	assert.False(t, IsDataURL("photos/before.jpg"))
	assert.False(t, IsDataURL(""))
}
