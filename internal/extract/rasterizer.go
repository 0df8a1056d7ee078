package extract

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders pages through MuPDF
type FitzRasterizer struct{}

func (FitzRasterizer) Rasterize(ctx context.Context, path string, dpi float64, maxPages int) ([][]byte, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	n := min(doc.NumPage(), maxPages)
	images := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImagePNG(i, dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize page %d: %w", i+1, err)
		}
		images = append(images, img)
	}
	return images, nil
}
