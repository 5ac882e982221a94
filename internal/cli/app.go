package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kardianos/service"

	"guessmac/internal/config"
	"guessmac/internal/hwaddr"
	"guessmac/internal/logger"
	"guessmac/internal/netif"
	"guessmac/internal/route"
	"guessmac/internal/shell"
)

// app carries what the commands share once flags have been parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	interfaces netif.Source
	runner     shell.Runner
	sysLogger  func() (service.Logger, error)

	closers []io.Closer
}

func newApp() *app {
	return &app{
		cfg:        config.Default(),
		interfaces: netif.System{},
		runner:     shell.ExecRunner{},
		sysLogger:  systemLogger,
	}
}

// setupLogging builds the logger from the parsed flags. Logs go to stderr
// unless a log file is configured.
func (a *app) setupLogging(stderr io.Writer) error {
	out := stderr
	if a.cfg.LogFile != "" {
		f, err := logger.OpenRotating(a.cfg.LogFile, a.cfg.LogMaxSizeMB, a.cfg.LogMaxBackups)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, f)
		out = f
	}

	var svc service.Logger
	if a.cfg.SysLog {
		var err error
		if svc, err = a.sysLogger(); err != nil {
			return fmt.Errorf("system logger: %w", err)
		}
	}

	level := slog.LevelWarn
	if a.cfg.Verbose {
		level = slog.LevelDebug
	}
	a.logger = logger.Setup(svc, out, level)
	return nil
}

func (a *app) guesser() (hwaddr.Guesser, error) {
	hint, err := route.New(a.cfg.HintSource, route.Options{
		Runner:     a.runner,
		Interfaces: a.interfaces,
		Timeout:    a.cfg.CommandTimeout,
		Logger:     a.logger,
	})
	if err != nil {
		return hwaddr.Guesser{}, err
	}
	return hwaddr.Guesser{
		Hint:       hint,
		Interfaces: a.interfaces,
		Runner:     a.runner,
		Timeout:    a.cfg.CommandTimeout,
		Logger:     a.logger,
	}, nil
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
