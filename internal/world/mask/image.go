package mask

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
)

// DefaultAlphaThreshold is the 16-bit alpha above which a pixel counts as solid
const DefaultAlphaThreshold = 0x7fff

// FromImage converts an image into a grid with one cell per pixel.
// Image row 0 is the top of the level.
func FromImage(img image.Image, cellSize float64, alphaThreshold uint32) (*Grid, error) {
	b := img.Bounds()
	g, err := NewGrid(b.Dx(), b.Dy(), cellSize)
	if err != nil {
		return nil, err
	}
	for py := b.Min.Y; py < b.Max.Y; py++ {
		cy := b.Dy() - 1 - (py - b.Min.Y)
		for px := b.Min.X; px < b.Max.X; px++ {
			_, _, _, a := img.At(px, py).RGBA()
			if a > alphaThreshold {
				g.Set(px-b.Min.X, cy, true)
			}
		}
	}
	return g, nil
}

// LoadPNG reads a mask image from disk
func LoadPNG(path string, cellSize float64) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mask image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask image %s: %w", path, err)
	}

	g, err := FromImage(img, cellSize, DefaultAlphaThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid mask image %s: %w", path, err)
	}
	return g, nil
}
