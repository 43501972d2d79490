package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/assets"
	"github.com/gogpu/artboard/config"
	"github.com/gogpu/artboard/internal/httpapi"
	"github.com/gogpu/artboard/render"
	"github.com/gogpu/artboard/store"
	"github.com/gogpu/artboard/store/memory"
	"github.com/gogpu/artboard/store/postgres"
	"github.com/gogpu/artboard/store/redis"
	"github.com/gogpu/artboard/text"
)

const shutdownTimeout = 10 * time.Second

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg.App.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore.Close()

	fonts, err := newFonts(ctx, cfg.Fonts)
	if err != nil {
		return err
	}
	profile, err := cfg.ExportProfile()
	if err != nil {
		return err
	}
	renderer := render.New(
		render.WithAssets(newLoader(cfg.Assets)),
		render.WithFonts(fonts),
		render.WithProfile(profile),
	)

	api := httpapi.New(httpapi.Deps{
		Store:         st,
		Renderer:      renderer,
		Fonts:         fonts,
		ExportRate:    rate.Limit(cfg.Export.Rate),
		ExportBurst:   cfg.Export.Burst,
		RenderRate:    rate.Limit(cfg.Server.RenderRate),
		RenderBurst:   cfg.Server.RenderBurst,
		MaxRenderSize: cfg.Server.MaxRenderSize,
		AllowOrigins:  cfg.Server.AllowOrigins,
		Version:       cfg.App.Version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		artboard.Logger().Info("listening", "addr", srv.Addr, "store", cfg.Store.Backend, "env", cfg.App.Environment)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	artboard.Logger().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.StorePostgres:
		s, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, nil, err
		}
		return s, s, nil
	case config.StoreRedis:
		var opts []redis.Option
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		s, err := redis.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StoreMemory:
		return memory.New(), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Backend)
}

func newFonts(ctx context.Context, cfg config.FontsConfig) (*text.Registry, error) {
	var opts []text.RegistryOption
	if cfg.CDNURL != "" {
		opts = append(opts, text.WithProvider(text.NewHTTPProvider(cfg.CDNURL)))
	}
	fonts := text.NewRegistry(opts...)
	if cfg.Dir != "" {
		if err := fonts.WatchDir(ctx, cfg.Dir); err != nil {
			return nil, err
		}
	}
	return fonts, nil
}

func newLoader(cfg config.AssetsConfig) *assets.Loader {
	var opts []assets.Option
	if cfg.AWSRegion != "" {
		opts = append(opts, assets.WithS3Region(cfg.AWSRegion))
	}
	// Sources come from clients, so local files are confined to ASSET_DIR
	// and disabled without it.
	if cfg.BaseDir != "" {
		opts = append(opts, assets.WithBaseDir(cfg.BaseDir))
	} else {
		opts = append(opts, assets.WithoutLocalFiles())
	}
	return assets.NewLoader(opts...)
}
