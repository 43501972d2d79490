package text

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
)

func TestHTTPProviderURL(t *testing.T) {
	p := NewHTTPProvider("https://fonts.example.com/{family}/{variant}.ttf")
	got := p.URL("Playfair Display", Style{Bold: true})
	want := "https://fonts.example.com/Playfair%20Display/bold.ttf"
	if got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}

func TestHTTPProviderFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Brand/bold.ttf":
			_, _ = w.Write(gobold.TTF)
		case "/Empty/regular.ttf":
		case "/Broken/regular.ttf":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL + "/{family}/{variant}.ttf")
	ctx := context.Background()

	data, err := p.Fetch(ctx, "Brand", Style{Bold: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != len(gobold.TTF) {
		t.Errorf("fetched %d bytes, want %d", len(data), len(gobold.TTF))
	}
	if _, err := p.Fetch(ctx, "Missing", Style{}); !errors.Is(err, ErrUnknownFamily) {
		t.Errorf("missing: err = %v, want ErrUnknownFamily", err)
	}
	if _, err := p.Fetch(ctx, "Empty", Style{}); !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("empty: err = %v, want ErrEmptyFontData", err)
	}
	if _, err := p.Fetch(ctx, "Broken", Style{}); err == nil {
		t.Error("server error: want error")
	}
}

func TestHTTPProviderWithRegistry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(gobold.TTF)
	}))
	defer srv.Close()

	r := NewRegistry(WithProvider(NewHTTPProvider(srv.URL + "/{family}-{variant}.ttf")))
	face, err := r.Resolve(context.Background(), "Anton", 700, false)
	if err != nil {
		t.Fatal(err)
	}
	if face.Family() != "Anton" || !face.Style().Bold {
		t.Errorf("resolved %s %+v", face.Family(), face.Style())
	}
}

func TestHTTPProviderNoTemplate(t *testing.T) {
	p := &HTTPProvider{}
	if _, err := p.Fetch(context.Background(), "X", Style{}); !errors.Is(err, ErrNoProvider) {
		t.Errorf("err = %v, want ErrNoProvider", err)
	}
}
