package text

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"Go", "go", "Go Mono", "sans-serif", "SERIF", "monospace", "system-ui"} {
		if !r.Has(name) {
			t.Errorf("Has(%q) = false", name)
		}
	}
	face, err := r.Lookup("sans-serif", Style{Bold: true, Italic: true})
	if err != nil {
		t.Fatal(err)
	}
	if face.Style() != (Style{Bold: true, Italic: true}) {
		t.Errorf("bold italic lookup got %+v", face.Style())
	}
}

func TestRegistryWithoutBuiltins(t *testing.T) {
	r := NewRegistry(WithoutBuiltins())
	if len(r.Families()) != 0 {
		t.Errorf("Families() = %v, want none", r.Families())
	}
	if _, err := r.Lookup("Go", Style{}); !errors.Is(err, ErrUnknownFamily) {
		t.Errorf("Lookup err = %v, want ErrUnknownFamily", err)
	}
	if _, err := r.Resolve(context.Background(), "Go", 400, false); !errors.Is(err, ErrUnknownFamily) {
		t.Errorf("Resolve without fallback err = %v, want ErrUnknownFamily", err)
	}
}

func TestRegistryLookupClosestStyle(t *testing.T) {
	r := NewRegistry(WithoutBuiltins())
	if _, err := r.Register("Brand", goitalic.TTF); err != nil {
		t.Fatal(err)
	}
	// Only an italic face exists; every request gets it.
	for _, s := range []Style{{}, {Bold: true}, {Italic: true}} {
		face, err := r.Lookup("brand", s)
		if err != nil {
			t.Fatalf("Lookup(%+v): %v", s, err)
		}
		if !face.Style().Italic {
			t.Errorf("Lookup(%+v) = %+v", s, face.Style())
		}
	}
}

func TestRegistryRegisterUpload(t *testing.T) {
	r := NewRegistry()
	name, err := r.RegisterUpload(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(name, UploadPrefix) {
		t.Errorf("upload family %q lacks prefix %q", name, UploadPrefix)
	}
	if !r.Has(name) {
		t.Errorf("uploaded family %q not registered", name)
	}
	other, err := r.RegisterUpload(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	if other == name {
		t.Error("two uploads got the same family name")
	}
	if _, err := r.RegisterUpload([]byte("junk")); err == nil {
		t.Error("RegisterUpload accepted junk data")
	}
}

func TestRegistryResolveFamilyList(t *testing.T) {
	r := NewRegistry()
	face, err := r.Resolve(context.Background(), `"Missing Font", 'Go Mono', sans-serif`, 400, false)
	if err != nil {
		t.Fatal(err)
	}
	if face.Family() != FamilyGoMono {
		t.Errorf("resolved %q, want %q", face.Family(), FamilyGoMono)
	}
}

func TestRegistryResolveFallback(t *testing.T) {
	r := NewRegistry()
	face, err := r.Resolve(context.Background(), "Nope", 700, false)
	if err != nil {
		t.Fatal(err)
	}
	if face.Family() != FamilyGo || !face.Style().Bold {
		t.Errorf("fallback = %s %+v, want bold Go", face.Family(), face.Style())
	}
}

func TestRegistryResolveFromProvider(t *testing.T) {
	var calls atomic.Int32
	p := ProviderFunc(func(ctx context.Context, family string, style Style) ([]byte, error) {
		calls.Add(1)
		if family != "Hosted" {
			return nil, ErrUnknownFamily
		}
		return goregular.TTF, nil
	})
	r := NewRegistry(WithProvider(p))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			face, err := r.Resolve(context.Background(), "Hosted", 400, false)
			if err != nil {
				t.Error(err)
				return
			}
			if face.Family() != "Hosted" {
				t.Errorf("resolved %q, want Hosted", face.Family())
			}
		}()
	}
	wg.Wait()

	if n := calls.Load(); n < 1 || n > 8 {
		t.Errorf("provider called %d times", n)
	}
	if !r.Has("hosted") {
		t.Error("fetched family was not registered")
	}

	before := calls.Load()
	if _, err := r.Resolve(context.Background(), "Hosted", 400, false); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != before {
		t.Error("registered family fetched again")
	}
}

func TestRegistryResolveProviderFailureFallsBack(t *testing.T) {
	p := ProviderFunc(func(ctx context.Context, family string, style Style) ([]byte, error) {
		return nil, errors.New("offline")
	})
	r := NewRegistry(WithProvider(p), WithFallback("monospace"))
	face, err := r.Resolve(context.Background(), "Hosted", 400, false)
	if err != nil {
		t.Fatal(err)
	}
	if face.Family() != FamilyGoMono {
		t.Errorf("fallback family = %q, want %q", face.Family(), FamilyGoMono)
	}
}

func TestRegistryResolveCanceled(t *testing.T) {
	p := ProviderFunc(func(ctx context.Context, family string, style Style) ([]byte, error) {
		return nil, ctx.Err()
	})
	r := NewRegistry(WithProvider(p))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Resolve(ctx, "Hosted", 400, false); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSplitFamilies(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Inter", []string{"Inter"}},
		{`"Playfair Display", serif`, []string{"Playfair Display", "serif"}},
		{" 'A' ,, B ", []string{"A", "B"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		got := SplitFamilies(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("SplitFamilies(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
