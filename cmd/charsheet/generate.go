package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/charsheet/content"
	"github.com/cory-johannsen/charsheet/internal/config"
	"github.com/cory-johannsen/charsheet/internal/frontend/console"
	"github.com/cory-johannsen/charsheet/internal/game/blueprint"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/generator"
	"github.com/cory-johannsen/charsheet/internal/game/prompt"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
	"github.com/cory-johannsen/charsheet/internal/observability"
	"github.com/cory-johannsen/charsheet/internal/server"
	"github.com/cory-johannsen/charsheet/internal/sheet"
)

// generate builds one character and serves its sheet until interrupted.
func generate(cmd *cobra.Command, configPath string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}

	svc, err := server.Listen(cfg.HTTP, logger)
	if err != nil {
		return err
	}
	serving := false
	defer func() {
		if !serving {
			_ = svc.Close()
		}
	}()

	con := console.New(out)
	src := dice.NewSource(cfg.Generation.Seed)
	var p prompt.Prompter = console.NewTerminal(in, con)
	if cfg.Generation.Random {
		p = prompt.NewRandom(src)
	}
	gen := generator.New(catalog, p, con, dice.NewRoller(src, logger), observability.Tracer("generator"), logger)

	g := cfg.Generation
	c, err := gen.Generate(ctx, generator.Request{
		Request: blueprint.Request{
			Race:       g.Race,
			Subrace:    g.Subrace,
			Sex:        g.Sex,
			Alignment:  g.Alignment,
			Background: g.Background,
			Class:      g.Class,
			Subclass:   g.Subclass,
			Level:      g.Level,
		},
		Threshold: g.Threshold,
		RollHP:    g.RollHP,
	})
	if err != nil {
		return err
	}
	doc, err := sheet.Bytes(c, catalog)
	if err != nil {
		return err
	}
	svc.SetDocument(doc)

	con.Info(fmt.Sprintf("%s %s %d is ready at %s (Ctrl-C to quit)", c.Race, c.Class, c.Level, svc.URL()))
	lc := server.NewLifecycle(logger)
	lc.Add("sheet", svc)
	serving = true
	return lc.Run(ctx)
}

func loadCatalog(cfg config.CatalogConfig) (*ruleset.Catalog, error) {
	if cfg.Dir != "" {
		return ruleset.LoadDir(cfg.Dir)
	}
	return ruleset.Load(content.FS)
}
