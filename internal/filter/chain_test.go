package filter

import (
	"bytes"
	"testing"

	"github.com/gogpu/artboard"
)

func TestChainNeutralIsEmpty(t *testing.T) {
	if chain := Chain(artboard.NeutralFilters(), 3); len(chain) != 0 {
		t.Errorf("neutral chain has %d filters", len(chain))
	}
}

func TestChainOrder(t *testing.T) {
	f := artboard.Filters{Brightness: 120, Contrast: 80, Saturation: 0, Hue: 90, Blur: 2}
	chain := Chain(f, 1.5)
	if len(chain) != 5 {
		t.Fatalf("chain has %d filters, want 5", len(chain))
	}
	if chain[0] != ColorMatrix(Brightness(1.2)) {
		t.Error("brightness should come first")
	}
	if chain[1] != ColorMatrix(Contrast(0.8)) {
		t.Error("contrast should come second")
	}
	if chain[2] != ColorMatrix(Saturate(0)) {
		t.Error("saturate should come third")
	}
	if chain[3] != ColorMatrix(HueRotate(90)) {
		t.Error("hue-rotate should come fourth")
	}
	blur, ok := chain[4].(Blur)
	if !ok || blur.Radius != 3 {
		t.Errorf("last filter = %#v, want Blur{3}", chain[4])
	}
}

func TestChainBlurOnlyWhenPositive(t *testing.T) {
	f := artboard.NeutralFilters()
	f.Blur = 0
	for _, fl := range Chain(f, 2) {
		if _, ok := fl.(Blur); ok {
			t.Error("blur 0 should not add a blur pass")
		}
	}
}

func TestApplyChain(t *testing.T) {
	img := noiseRGBA(10, 10)
	want := bytes.Clone(img.Pix)
	ApplyChain(img, nil)
	if !bytes.Equal(img.Pix, want) {
		t.Error("empty chain changed the image")
	}
	ApplyChain(img, Chain(artboard.Filters{Brightness: 0, Contrast: 100, Saturation: 100}, 1))
	if img.Pix[0] != 0 || img.Pix[3] != 255 {
		t.Error("brightness 0 chain should blacken the image")
	}
}
