package paper

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Registered decoders for uploaded scans.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrImageDecode is wrapped by every ImageDecodeError.
var ErrImageDecode = errors.New("cannot decode image")

// ImageDecodeError reports one unreadable upload. It never aborts a batch.
type ImageDecodeError struct {
	Name string
	Err  error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("image %q: %v", e.Name, e.Err)
}

func (e *ImageDecodeError) Unwrap() []error { return []error{ErrImageDecode, e.Err} }

// SourceImage is one uploaded scan.
type SourceImage struct {
	Name string
	Data []byte
}

// ErrTooManyPixels is wrapped when an image header declares more pixels than
// the configured limit.
var ErrTooManyPixels = errors.New("image exceeds the pixel limit")

// decode checks the header against maxPixels before decoding the pixel data.
func (s SourceImage) decode(maxPixels int64) (image.Image, error) {
	if _, _, err := s.size(maxPixels); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(s.Data))
	if err != nil {
		return nil, &ImageDecodeError{Name: s.Name, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &ImageDecodeError{Name: s.Name, Err: errors.New("image has no pixels")}
	}
	return img, nil
}

// size reads only the image header. A positive maxPixels rejects images
// whose width times height is larger.
func (s SourceImage) size(maxPixels int64) (int, int, error) {
	if len(s.Data) == 0 {
		return 0, 0, &ImageDecodeError{Name: s.Name, Err: errors.New("empty file")}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(s.Data))
	if err != nil {
		return 0, 0, &ImageDecodeError{Name: s.Name, Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, &ImageDecodeError{Name: s.Name, Err: errors.New("image has no pixels")}
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return 0, 0, &ImageDecodeError{
			Name: s.Name,
			Err:  fmt.Errorf("%w: %dx%d is over %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels),
		}
	}
	return cfg.Width, cfg.Height, nil
}
