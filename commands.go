package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"school-backend/config"
	"school-backend/controller"
	"school-backend/logger"
	"school-backend/spreadsheet"
)

const shutdownTimeout = 10 * time.Second

// setup loads the config, builds the logger and opens the backend. The
// returned context carries the logger.
func setup(c *cli.Context) (context.Context, *config.Config, zerolog.Logger, *backend, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, zerolog.Nop(), nil, cli.Exit(err, 1)
	}
	log := logger.New(cfg.Log.Level, cfg.IsLocal())
	ctx := log.WithContext(c.Context)

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, nil, log, nil, cli.Exit(err, 1)
	}
	return ctx, cfg, log, b, nil
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "run the HTTP API",
	Action: func(c *cli.Context) error {
		ctx, cfg, log, b, err := setup(c)
		if err != nil {
			return err
		}
		defer b.Close(ctx)

		controllers, err := b.controllers(cfg)
		if err != nil {
			return cli.Exit(err, 1)
		}

		srv := &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      controller.NewRouter(log, controllers),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		serveErr := make(chan error, 1)
		go func() {
			log.Info().
				Str("port", cfg.Server.Port).
				Str("strategy", cfg.RollNumber.Strategy).
				Bool("serialize", cfg.RollNumber.Serialize).
				Msg("server starting")
			serveErr <- srv.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				return cli.Exit(errors.Wrap(err, "serve"), 1)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return cli.Exit(errors.Wrap(err, "shutdown"), 1)
		}
		return nil
	},
}

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "insert the default fee items into an empty collection",
	Action: func(c *cli.Context) error {
		ctx, _, log, b, err := setup(c)
		if err != nil {
			return err
		}
		defer b.Close(ctx)

		seeded, err := controller.NewFeeItemController(b.feeItems).Initialize(ctx)
		if err != nil {
			return cli.Exit(err, 1)
		}
		log.Info().Bool("seeded", seeded).Msg("seed finished")
		return nil
	},
}

var exportCommand = &cli.Command{
	Name:  "export",
	Usage: "write every student to an XLSX workbook",
	Flags: []cli.Flag{
		&cli.PathFlag{
			Name:  "out",
			Usage: "destination file",
			Value: "students.xlsx",
		},
	},
	Action: func(c *cli.Context) error {
		ctx, _, log, b, err := setup(c)
		if err != nil {
			return err
		}
		defer b.Close(ctx)

		students, err := b.students.List(ctx)
		if err != nil {
			return cli.Exit(err, 1)
		}
		out, err := os.Create(c.Path("out"))
		if err != nil {
			return cli.Exit(errors.Wrap(err, "create export file"), 1)
		}
		defer out.Close()
		if err := spreadsheet.WriteStudents(out, students); err != nil {
			return cli.Exit(err, 1)
		}
		log.Info().Int("students", len(students)).Str("file", c.Path("out")).Msg("export finished")
		return out.Close()
	},
}
