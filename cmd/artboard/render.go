package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/assets"
	"github.com/gogpu/artboard/config"
	"github.com/gogpu/artboard/render"
)

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var (
		in      = fs.String("in", "", "project JSON file")
		out     = fs.String("out", "preview.png", "output image")
		size    = fs.Int("size", 1024, "output width and height in pixels")
		format  = fs.String("format", "", "png or jpeg (default: from -out extension)")
		quality = fs.Float64("quality", render.DefaultJPEGQuality, "jpeg quality in (0, 1]")
		dir     = fs.String("assets", "", "directory local asset paths are confined to (default: the project file's directory)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := readProject(*in)
	if err != nil {
		return err
	}
	name := *format
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(*out), ".")
	}
	f, err := render.ParseFormat(name)
	if err != nil {
		return err
	}

	r := newCLIRenderer(*in, *dir)
	data, err := r.Render(context.Background(), p, *size, f, *quality)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	artboard.Logger().Info("rendered", "project", p.ID, "out", *out, "bytes", len(data))
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var (
		in      = fs.String("in", "", "project JSON file")
		out     = fs.String("out", "", "output zip (default: project-<id>.zip)")
		profile = fs.String("profile", os.Getenv("EXPORT_PROFILE"), "YAML export profile")
		dir     = fs.String("assets", "", "directory local asset paths are confined to (default: the project file's directory)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := readProject(*in)
	if err != nil {
		return err
	}
	cfg := config.Config{Export: config.ExportConfig{Profile: *profile}}
	prof, err := cfg.ExportProfile()
	if err != nil {
		return err
	}
	if *out == "" {
		*out = render.ArchiveName(p)
	}

	file, err := os.Create(*out)
	if err != nil {
		return err
	}
	r := newCLIRenderer(*in, *dir, render.WithProfile(prof))
	if err := r.Export(context.Background(), p, file); err != nil {
		file.Close()
		os.Remove(*out)
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	artboard.Logger().Info("exported", "project", p.ID, "out", *out, "targets", len(prof.Targets))
	return nil
}

func readProject(path string) (*artboard.Project, error) {
	if path == "" {
		return nil, fmt.Errorf("missing -in project file")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p artboard.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

func newCLIRenderer(projectFile, dir string, opts ...render.Option) *render.Renderer {
	if dir == "" {
		dir = filepath.Dir(projectFile)
	}
	loaderOpts := []assets.Option{assets.WithBaseDir(dir)}
	if region := os.Getenv("AWS_REGION"); region != "" {
		loaderOpts = append(loaderOpts, assets.WithS3Region(region))
	}
	opts = append([]render.Option{render.WithAssets(assets.NewLoader(loaderOpts...))}, opts...)
	return render.New(opts...)
}
