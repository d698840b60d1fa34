package imageref

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var pixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestResolvePassesURLsThrough(t *testing.T) {
	for _, ref := range []string{"https://example.com/a.png", "HTTP://x/y.jpg", "data:image/gif;base64,R0lG"} {
		got, err := Resolve(ref)
		require.NoError(t, err)
		assert.Equal(t, ref, got)
	}
}

func TestResolveEmbedsFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.png")
	require.NoError(t, os.WriteFile(path, pixel, 0o644))

	got, err := Resolve(path)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "data:image/png;base64,iVBORw0KGgo"), got)
	assert.Equal(t, "embedded image/png", Describe(got))
}

func TestResolveRejects(t *testing.T) {
	text := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))

	_, err := Resolve(text)
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	_, err = Resolve("   ")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(""))
	assert.Equal(t, "https://example.com/a.png", Describe("https://example.com/a.png"))
	assert.Equal(t, "[invalid image]", Describe("C:/pics/a.png"))
}
