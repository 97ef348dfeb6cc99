// Package palette extracts a six colour palette from an image and animates it.
package palette

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/doorhinge/wallscenes/util/log"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxEdge is the longest edge images are reduced to before sampling.
	MaxEdge = 600
	// BlurSigma smooths noise before averaging.
	BlurSigma = 10.0
	// Rows and Cols define the sampling grid; cells are ordered row-major.
	Rows = 2
	Cols = 3
	// Size is the number of colours in a palette.
	Size = Rows * Cols
)

const (
	black = "#000000"
	white = "#FFFFFF"
)

// Extract returns Size hex colours, the mean colour of each grid cell of img.
func Extract(img image.Image) []string {
	b := img.Bounds()
	src := img
	if b.Dx() > MaxEdge || b.Dy() > MaxEdge {
		src = imaging.Fit(img, MaxEdge, MaxEdge, imaging.Lanczos)
	}
	blurred := imaging.Blur(src, BlurSigma)

	w, h := blurred.Bounds().Dx(), blurred.Bounds().Dy()
	out := make([]string, 0, Size)
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			cell := image.Rect(c*w/Cols, r*h/Rows, (c+1)*w/Cols, (r+1)*h/Rows)
			out = append(out, cellMean(blurred, cell))
		}
	}

	if allEqual(out, white) {
		log.Printf("Palette: image %dx%d produced an all-white palette, the source may not have decoded correctly", b.Dx(), b.Dy())
	}
	return out
}

// ExtractFile decodes the image at path and extracts its palette.
func ExtractFile(path string) ([]string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return Extract(img), nil
}

func cellMean(img *image.NRGBA, cell image.Rectangle) string {
	var sr, sg, sb, n uint64
	for y := cell.Min.Y; y < cell.Max.Y; y++ {
		for x := cell.Min.X; x < cell.Max.X; x++ {
			i := img.PixOffset(x, y)
			sr += uint64(img.Pix[i])
			sg += uint64(img.Pix[i+1])
			sb += uint64(img.Pix[i+2])
			n++
		}
	}
	if n == 0 {
		return black
	}
	return Hex(color.NRGBA{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n), A: 0xff})
}

func allEqual(values []string, want string) bool {
	for _, v := range values {
		if v != want {
			return false
		}
	}
	return len(values) > 0
}

// Hex formats c as #RRGGBB.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
}

// ParseHex parses #RRGGBB (the leading # is optional).
func ParseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
