package display

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profilerJSON = `{
  "SPDisplaysDataType" : [
    {
      "_name" : "Apple M2 Pro",
      "spdisplays_ndrvs" : [
        {
          "_name" : "DELL U2720Q",
          "_spdisplays_pixels" : "3840 x 2160"
        },
        {
          "_name" : "Color LCD",
          "_spdisplays_pixels" : "3456 x 2234",
          "spdisplays_main" : "spdisplays_yes",
          "spdisplays_pixelresolution" : "spdisplays_3456x2234Retina"
        },
        {
          "_name" : "DELL U2720Q",
          "_spdisplays_pixels" : "3840 x 2160 @ 60.00Hz"
        }
      ]
    }
  ]
}`

func TestParseSystemProfiler(t *testing.T) {
	got, err := parseSystemProfiler([]byte(profilerJSON))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, profiledDisplay{Name: "Color LCD", Width: 3456, Height: 2234, Main: true}, got[0])
	assert.Equal(t, "DELL U2720Q", got[1].Name)
	assert.Equal(t, 3840, got[2].Width)
	assert.Equal(t, 2160, got[2].Height)
}

func TestParseSystemProfiler_Errors(t *testing.T) {
	_, err := parseSystemProfiler([]byte("not json"))
	assert.Error(t, err)

	_, err = parseSystemProfiler([]byte(`{"SPDisplaysDataType": []}`))
	assert.Error(t, err)
}

func TestParseResolutionString(t *testing.T) {
	tests := []struct {
		input   string
		wantW   int
		wantH   int
		wantErr bool
	}{
		{"1920 x 1080", 1920, 1080, false},
		{"2880 x 1864 Retina", 2880, 1864, false},
		{"1710 x 1107 @ 60.00Hz", 1710, 1107, false},
		{"No resolution here", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			w, h, err := parseResolutionString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestAssignIdentity(t *testing.T) {
	displays := []Display{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}}
	assignIdentity(displays, []string{"Color LCD", "DELL U2720Q", "DELL U2720Q"})

	assert.Equal(t, "Color LCD", displays[0].ID)
	assert.Equal(t, "DELL U2720Q", displays[1].ID)
	assert.Equal(t, "DELL U2720Q (2)", displays[2].ID)
	assert.Equal(t, "display-3", displays[3].ID)
	assert.Equal(t, "Display 4", displays[3].Label())
	assert.Equal(t, "DELL U2720Q", displays[2].Label())
}

func TestDisplaySize(t *testing.T) {
	d := Display{Bounds: image.Rect(1440, 0, 3360, 1080)}
	assert.Equal(t, 1920, d.Width())
	assert.Equal(t, 1080, d.Height())
}
