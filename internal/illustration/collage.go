package illustration

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/eternisai/taleweaver/internal/media"
)

const (
	maxCollageTiles = 4
	tileSize        = imageSize / 2
)

// Collage lays out up to four scene images in a grid and encodes it as PNG. Images that
// cannot be decoded are skipped; an error is returned only when none can be used.
//
// Layout: one image fills the canvas, two sit side by side, three form a pyramid, four
// fill a 2x2 grid.
func Collage(files []media.File) ([]byte, error) {
	var tiles []image.Image
	for _, f := range files {
		if len(tiles) == maxCollageTiles {
			break
		}
		img, err := decodeFile(f.Path)
		if err != nil {
			continue
		}
		tiles = append(tiles, img)
	}
	if len(tiles) == 0 {
		return nil, errors.New("no decodable images for collage")
	}

	var canvas *image.RGBA
	var slots []image.Rectangle

	switch len(tiles) {
	case 1:
		canvas = image.NewRGBA(image.Rect(0, 0, imageSize, imageSize))
		slots = []image.Rectangle{canvas.Bounds()}
	case 2:
		canvas = image.NewRGBA(image.Rect(0, 0, imageSize, tileSize))
		slots = []image.Rectangle{tile(0, 0), tile(tileSize, 0)}
	case 3:
		canvas = image.NewRGBA(image.Rect(0, 0, imageSize, imageSize))
		slots = []image.Rectangle{tile(0, 0), tile(tileSize, 0), tile(tileSize/2, tileSize)}
	default:
		canvas = image.NewRGBA(image.Rect(0, 0, imageSize, imageSize))
		slots = []image.Rectangle{tile(0, 0), tile(tileSize, 0), tile(0, tileSize), tile(tileSize, tileSize)}
	}

	for i, img := range tiles {
		draw.CatmullRom.Scale(canvas, slots[i], img, img.Bounds(), draw.Src, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tile(x, y int) image.Rectangle {
	return image.Rect(x, y, x+tileSize, y+tileSize)
}

func decodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
