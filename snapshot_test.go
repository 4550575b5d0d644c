package glyphwave

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosterTime(t *testing.T) {
	for _, d := range Scenes {
		tm, err := PosterTime(d.Name, 1)
		require.NoError(t, err)
		p := ShaderPhase(tm, 1)
		assert.Equal(t, d.Index, p.Index, d.Name)
		assert.Zero(t, p.Transition, d.Name)
	}
	_, err := PosterTime("lava", 1)
	assert.Error(t, err)
	_, err = PosterTime(SceneWater, 0)
	assert.Error(t, err)
}

func TestRenderPosterDeterministic(t *testing.T) {
	u := Uniforms{Time: 2, PixelSize: 6, Speed: 1}
	a, err := RenderPoster(30, 20, u)
	require.NoError(t, err)
	b, err := RenderPoster(30, 20, u)
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)
	assert.Equal(t, image.Rect(0, 0, 30, 20), a.Bounds())
}

func TestWritePosterWithThumbnail(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	img, err := RenderPoster(40, 20, Uniforms{PixelSize: 4, Speed: 1})
	require.NoError(t, err)

	paths, err := WritePoster(dir, "water poster", img, 10)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "water_poster.png"), paths[0])
	assert.Equal(t, filepath.Join(dir, "water_poster_thumb.png"), paths[1])

	f, err := os.Open(paths[1])
	require.NoError(t, err)
	defer f.Close()
	thumb, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 10, thumb.Bounds().Dx())
	assert.Equal(t, 5, thumb.Bounds().Dy())
}

func TestThumbnailKeepsAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 30, 90))
	th := Thumbnail(src, 12)
	assert.Equal(t, 4, th.Bounds().Dx())
	assert.Equal(t, 12, th.Bounds().Dy())
}

func TestSanitizeLabel(t *testing.T) {
	tests := map[string]string{
		"":           "unlabeled",
		"  ":         "unlabeled",
		"hive-01":    "hive-01",
		"a/b\\c":     "a_b_c",
		"frame v1.2": "frame_v1.2",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeLabel(in), "sanitizeLabel(%q)", in)
	}
}
