// Command flyerd renders flyers over HTTP.
//
//	POST /render          partial config JSON -> PNG (?scale= overrides)
//	POST /render/svg      partial config JSON -> SVG
//	POST /archive         partial config JSON -> config archive (zip)
//	POST /archive/config  config archive -> config JSON
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/gg"

	"flyer-editor/internal/config"
	"flyer-editor/internal/fonts"
	"flyer-editor/internal/server"
	"flyer-editor/internal/version"
)

func main() {
	configPath := flag.String("config", "", "Settings file (default: user config dir)")
	flag.Parse()

	level := slog.LevelInfo
	if v := os.Getenv("FLYER_LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			slog.Warn("ignoring FLYER_LOG_LEVEL", "value", v, "err", err)
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	gg.SetLogger(logger.With("component", "gg"))

	path := *configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			logger.Error("locating settings", "err", err)
			os.Exit(1)
		}
		path = p
	}
	settings, err := config.Load(path)
	if err != nil {
		logger.Error("loading settings", "path", path, "err", err)
		os.Exit(1)
	}
	settings.ApplyEnv()

	reg := fonts.Default()
	for _, dir := range settings.Fonts.Dirs {
		if _, err := reg.LoadDir(dir); err != nil {
			logger.Warn("loading fonts", "dir", dir, "err", err)
		}
	}

	srv := server.New(settings, reg, logger)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("starting flyerd", "version", version.String())
	if err := srv.Listen(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
