package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"net/http"

	"golang.org/x/image/draw"
)

// Image formats reported by DetectImageFormat.
const (
	ImageFormatJPEG    = "jpeg"
	ImageFormatPNG     = "png"
	ImageFormatUnknown = ""
)

// ImageService provides image processing operations for cover art.
//
// ImageService is used to:
//   - Shrink covers to a maximum edge length before embedding
//   - Convert covers to JPEG
//
// Example usage:
//
//	svc := NewImageService()
//	cover, err := svc.Prepare(ctx, imageData, 600, true)
type ImageService struct {
	// Quality is the JPEG encoding quality (1-100).
	Quality int
}

// NewImageService creates a new ImageService with JPEG quality 90.
func NewImageService() *ImageService {
	return &ImageService{Quality: 90}
}

// DetectImageFormat sniffs the image format from its leading bytes.
func DetectImageFormat(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ImageFormatJPEG
	case "image/png":
		return ImageFormatPNG
	default:
		return ImageFormatUnknown
	}
}

// Prepare applies the configured cover transformations.
//
// When maxSize is positive the image is shrunk to fit a maxSize x maxSize
// square (and therefore re-encoded as JPEG). Otherwise, when toJPEG is set
// and the data is not already JPEG, it is converted. With neither option
// the data is returned unchanged.
func (s *ImageService) Prepare(ctx context.Context, data []byte, maxSize int, toJPEG bool) ([]byte, error) {
	switch {
	case maxSize > 0:
		return s.ResizeImage(ctx, data, maxSize, maxSize)
	case toJPEG && DetectImageFormat(data) != ImageFormatJPEG:
		return s.ConvertToJPEG(ctx, data)
	default:
		return data, nil
	}
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved and images are never enlarged. The result
// is always JPEG-encoded.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 1500x1000 image becomes 1000x666
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return s.encode(dst)
}

// ConvertToJPEG re-encodes an image (JPEG, PNG) as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return s.encode(img)
}

func (s *ImageService) encode(img image.Image) ([]byte, error) {
	quality := s.Quality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fitWithin scales width x height down to fit maxWidth x maxHeight,
// keeping the aspect ratio.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		return max(1, int(float64(maxHeight)*ratio)), maxHeight
	}
	// Width is the limiting factor
	return maxWidth, max(1, int(float64(maxWidth)/ratio))
}
