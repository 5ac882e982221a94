// Package hwaddr guesses the host's primary hardware address: the MAC of the
// interface most likely used for outbound traffic.
//
// The guess runs in three steps, each at most once:
//
//  1. ask a route.Resolver for the preferred interface (failures mean "none"),
//  2. scan the OS interface table, preferred interface first,
//  3. only if that found nothing, parse the output of "ip -o link show".
package hwaddr

import (
	"context"
	"io"
	"log/slog"
	"time"

	"guessmac/internal/netif"
	"guessmac/internal/route"
	"guessmac/internal/shell"
)

// Stage names the step that produced a MAC.
type Stage string

const (
	StageTable Stage = "table"
	StageLinks Stage = "links"
)

// Result is a successful guess.
type Result struct {
	MAC   string `json:"mac"`
	Stage Stage  `json:"stage"`
	// Hint is the preferred interface name, "" if there was none.
	Hint string `json:"hint,omitempty"`
	// Interface is the table entry the MAC came from. Empty for StageLinks.
	Interface string `json:"interface,omitempty"`
}

// Guesser holds the collaborators of a guess. The zero value uses the
// system interface table, "sh" and the default-route hint.
type Guesser struct {
	Hint       route.Resolver
	Interfaces netif.Source
	Runner     shell.Runner
	// Timeout bounds each external command. Defaults to shell.DefaultTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Guess returns the primary MAC using the system defaults.
func Guess(ctx context.Context) (string, error) {
	return Guesser{}.Guess(ctx)
}

// Guess returns the primary MAC, or an error matching ErrNotFound.
func (g Guesser) Guess(ctx context.Context) (string, error) {
	res, err := g.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return res.MAC, nil
}

// Resolve runs the guess and reports how the MAC was found.
func (g Guesser) Resolve(ctx context.Context) (Result, error) {
	logger := g.logger()

	hint := g.hint().DefaultInterface(ctx)
	logger.Debug("Preferred interface", "interface", hint)

	table, err := g.interfaces().Interfaces(ctx)
	if err != nil {
		logger.Warn("Interface table unavailable, falling back to link scan", "error", err)
		table = nil
	}
	if name, mac, ok := MatchTable(hint, table); ok {
		logger.Debug("MAC found in interface table", "interface", name, "mac", mac)
		return Result{MAC: mac, Stage: StageTable, Hint: hint, Interface: name}, nil
	}

	logger.Debug("No MAC in interface table, scanning links", "interfaces", len(table))
	mac, err := ScanLinks(ctx, g.runner(), hint, g.Timeout)
	if err != nil {
		logger.Debug("Link scan failed", "error", err)
		return Result{}, err
	}
	logger.Debug("MAC found in link listing", "mac", mac)
	return Result{MAC: mac, Stage: StageLinks, Hint: hint}, nil
}

func (g Guesser) hint() route.Resolver {
	if g.Hint != nil {
		return g.Hint
	}
	return route.CommandResolver{Runner: g.runner(), Timeout: g.Timeout, Logger: g.Logger}
}

func (g Guesser) interfaces() netif.Source {
	if g.Interfaces != nil {
		return g.Interfaces
	}
	return netif.System{}
}

func (g Guesser) runner() shell.Runner {
	if g.Runner != nil {
		return g.Runner
	}
	return shell.ExecRunner{}
}

func (g Guesser) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
