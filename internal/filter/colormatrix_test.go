package filter

import (
	"bytes"
	"image/color"
	"testing"
)

func TestIdentityMatrixLeavesImage(t *testing.T) {
	img := noiseRGBA(16, 16)
	want := bytes.Clone(img.Pix)
	IdentityMatrix().Apply(img)
	if !bytes.Equal(img.Pix, want) {
		t.Error("identity matrix changed the image")
	}
}

func TestNeutralMatricesAreIdentity(t *testing.T) {
	tests := []struct {
		name string
		m    ColorMatrix
	}{
		{"brightness 1", Brightness(1)},
		{"contrast 1", Contrast(1)},
		{"saturate 1", Saturate(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.m.IsIdentity() {
				t.Errorf("%v is not identity", tt.m)
			}
		})
	}

	// Hue rotation by zero is identity up to float rounding.
	img := noiseRGBA(8, 8)
	want := bytes.Clone(img.Pix)
	HueRotate(0).Apply(img)
	for i := range want {
		if absDiff(img.Pix[i], want[i]) > 1 {
			t.Fatalf("hue-rotate(0) changed byte %d: %d -> %d", i, want[i], img.Pix[i])
		}
	}
}

func TestColorMatrixApply(t *testing.T) {
	tests := []struct {
		name string
		m    ColorMatrix
		in   color.RGBA
		want color.RGBA
	}{
		{"brightness 0 is black", Brightness(0), color.RGBA{200, 100, 50, 255}, color.RGBA{0, 0, 0, 255}},
		{"brightness 2 clamps", Brightness(2), color.RGBA{200, 100, 50, 255}, color.RGBA{255, 200, 100, 255}},
		{"contrast 0 is gray", Contrast(0), color.RGBA{10, 200, 90, 255}, color.RGBA{128, 128, 128, 255}},
		{"saturate 0 is gray", Saturate(0), color.RGBA{255, 0, 0, 255}, color.RGBA{54, 54, 54, 255}},
		{"hue 180 swaps red", HueRotate(180), color.RGBA{255, 0, 0, 255}, color.RGBA{0, 109, 109, 255}},
		{"premultiplied half alpha", Brightness(0.5), color.RGBA{100, 100, 100, 128}, color.RGBA{50, 50, 50, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := filledRGBA(1, 1, tt.in)
			tt.m.Apply(img)
			got := img.RGBAAt(0, 0)
			if !rgbaNear(got, tt.want, 2) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorMatrixThen(t *testing.T) {
	// Brightness then contrast differs from contrast then brightness.
	a := Brightness(0.5).Then(Contrast(2))
	b := Contrast(2).Then(Brightness(0.5))

	img1 := filledRGBA(1, 1, color.RGBA{200, 200, 200, 255})
	a.Apply(img1)
	img2 := filledRGBA(1, 1, color.RGBA{200, 200, 200, 255})
	Brightness(0.5).Apply(img2)
	Contrast(2).Apply(img2)
	if !rgbaNear(img1.RGBAAt(0, 0), img2.RGBAAt(0, 0), 1) {
		t.Errorf("Then mismatch: %v vs sequential %v", img1.RGBAAt(0, 0), img2.RGBAAt(0, 0))
	}
	if a == b {
		t.Error("composition order should matter")
	}
	if !IdentityMatrix().Then(IdentityMatrix()).IsIdentity() {
		t.Error("identity composition should be identity")
	}
}

func TestColorMatrixSkipsTransparent(t *testing.T) {
	img := filledRGBA(2, 2, color.RGBA{})
	Brightness(2).Apply(img)
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatal("transparent pixels should stay transparent")
		}
	}
}
