package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetManager(t *testing.T) {
	am := NewManager()

	t.Run("GetIcon", func(t *testing.T) {
		for _, name := range []string{"tray.png", "library.png", "scene.png", "prefs.png", "quit.png", "apply.png"} {
			icon, err := am.GetIcon(name)
			require.NoError(t, err, name)
			assert.Equal(t, name, icon.Name())
			assert.NotEmpty(t, icon.Content())
		}

		_, err := am.GetIcon("non_existent.png")
		assert.Error(t, err)
		_, err = am.GetIcon("")
		assert.Error(t, err)
	})

	t.Run("GetIconImage", func(t *testing.T) {
		img, err := am.GetIconImage("tray.png")
		require.NoError(t, err)
		assert.Equal(t, 64, img.Bounds().Dx())
	})

	t.Run("GetText", func(t *testing.T) {
		text, err := am.GetText("about.txt")
		assert.NoError(t, err)
		assert.Contains(t, text, "Wallpaper Scenes")

		_, err = am.GetText("non_existent.txt")
		assert.Error(t, err)
	})
}
