package enhance

import (
	"image"
	"image/color"
	"testing"
)

func whiteRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func TestEnhancerKeepsSize(t *testing.T) {
	src := whiteRGBA(37, 53)
	out := NewEnhancer().Enhance(src)
	if out.Bounds().Dx() != 37 || out.Bounds().Dy() != 53 {
		t.Fatalf("size changed to %v", out.Bounds())
	}
}

func TestEnhancerBinarizes(t *testing.T) {
	src := whiteRGBA(40, 40)
	src.Set(20, 20, color.RGBA{40, 40, 40, 255})
	src.Set(5, 5, color.RGBA{245, 245, 245, 255})

	out := NewEnhancer().Enhance(src)

	gray := func(x, y int) uint8 {
		return color.GrayModel.Convert(out.At(x, y)).(color.Gray).Y
	}
	if g := gray(20, 20); g != 0 {
		t.Errorf("ink pixel should turn black, got %d", g)
	}
	if g := gray(5, 5); g != 255 {
		t.Errorf("faint paper noise should turn white, got %d", g)
	}
	if g := gray(0, 39); g != 255 {
		t.Errorf("paper should stay white, got %d", g)
	}
}

func TestIdentityFlattensTransparency(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4)) // fully transparent
	out := Identity.Enhance(src)
	_, _, _, a := out.At(1, 1).RGBA()
	if a != 0xffff {
		t.Errorf("expected opaque output, alpha = %x", a)
	}
	r, _, _, _ := out.At(1, 1).RGBA()
	if r != 0xffff {
		t.Errorf("transparent pixels should become white, r = %x", r)
	}
}

func TestFilterFunc(t *testing.T) {
	called := false
	f := FilterFunc(func(img image.Image) image.Image {
		called = true
		return img
	})
	f.Enhance(whiteRGBA(1, 1))
	if !called {
		t.Error("FilterFunc did not call through")
	}
}
