// Command flyerrender renders a flyer without the editor.
//
// The input is a partial config JSON merged over the template, or a config
// archive; no input renders the template. The output format follows the -o
// extension: .png and .svg render, .zip packs an archive, .json unpacks one.
//
//	flyerrender -o flyer.png -scale 2 flyer.json
//	flyerrender -o flyer.zip flyer.json
//	flyerrender -o flyer.json saved.zip
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/gg"

	"flyer-editor/internal/config"
	"flyer-editor/internal/fonts"
	flyerimage "flyer-editor/internal/image"
	"flyer-editor/internal/project"
	"flyer-editor/internal/render"
	"flyer-editor/internal/scene"
	"flyer-editor/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "flyerrender: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("flyerrender", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "Output file (.png, .svg, .zip or .json)")
	scale := fs.Float64("scale", 0, "PNG scale (default from settings)")
	settingsPath := fs.String("config", "", "Settings file (default: user config dir)")
	timeout := fs.Duration("timeout", time.Minute, "Give up after this long")
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" || fs.NArg() > 1 {
		fs.Usage()
		return errors.New("usage: flyerrender -o OUTPUT [INPUT]")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	gg.SetLogger(logger.With("component", "gg"))

	path := *settingsPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	settings, err := config.Load(path)
	if err != nil {
		return err
	}
	if *scale > 0 {
		settings.Export.Scale = *scale
	}

	cfg, err := readInput(fs.Arg(0), settings)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var buf bytes.Buffer
	switch ext := strings.ToLower(filepath.Ext(*out)); ext {
	case ".png":
		reg := fonts.Default()
		for _, dir := range settings.Fonts.Dirs {
			if _, err := reg.LoadDir(dir); err != nil {
				logger.Warn("loading fonts", "dir", dir, "err", err)
			}
		}
		loader := flyerimage.NewLoader(settings.Assets.HTTPTimeout.Std(), version.UserAgent())
		loader.MaxConcurrent = settings.Assets.MaxConcurrent
		loader.Log = logger
		ex := render.NewExporter(reg, loader)
		ex.Scale = settings.Export.Scale
		ex.Log = logger
		err = ex.Export(ctx, cfg, &buf)
	case ".svg":
		err = render.WriteSVG(&buf, cfg, render.SVGOptions{})
	case ".zip":
		err = project.Write(&buf, cfg)
	case ".json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(cfg)
	default:
		return fmt.Errorf("unknown output format %q", ext)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("wrote", "path", *out, "bytes", buf.Len())
	return nil
}

// readInput loads the document to render. Archives are read whole; JSON is a
// partial config merged over the template sized from settings.
func readInput(path string, settings config.Config) (scene.Config, error) {
	var partial scene.PartialConfig
	if path != "" {
		if strings.EqualFold(filepath.Ext(path), ".zip") {
			return project.Load(path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return scene.Config{}, fmt.Errorf("failed to read input: %w", err)
		}
		if partial, err = scene.ParsePartial(data); err != nil {
			return scene.Config{}, err
		}
	}
	if partial.Width == nil {
		partial.Width = &settings.Canvas.Width
	}
	if partial.Height == nil {
		partial.Height = &settings.Canvas.Height
	}
	cfg := scene.Merge(partial)
	if _, err := scene.FromConfig(cfg); err != nil {
		return scene.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
