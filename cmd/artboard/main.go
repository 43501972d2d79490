// Command artboard serves the project API and renders or exports saved
// project documents from the command line.
//
// Usage:
//
//	artboard serve
//	artboard render -in project.json -out preview.png -size 1024
//	artboard export -in project.json -out project.zip
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/config"
)

const usage = `usage: artboard <command> [flags]

commands:
  serve    run the HTTP API (configured from the environment)
  render   render a project JSON file to an image
  export   export a project JSON file as a zip archive
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	setupLogger(os.Getenv("LOG_LEVEL"))

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe()
	case "render":
		err = runRender(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		artboard.Logger().Error("artboard failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) {
	if level == "" {
		level = "info"
	}
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	artboard.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
