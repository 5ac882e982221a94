// Package route works out which interface the host most likely uses for
// outbound traffic. Every resolver answers with an interface name or "" and
// never fails: a missing answer only means there is no preferred interface.
package route

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"runtime"
	"strings"
	"time"

	"guessmac/internal/netif"
	"guessmac/internal/shell"
)

// Hint source names accepted by New.
const (
	SourceRoute   = "route"
	SourceNetlink = "netlink"
	SourceWired   = "wired"
	SourceNone    = "none"
)

// Sources lists the accepted hint source names.
var Sources = []string{SourceRoute, SourceNetlink, SourceWired, SourceNone}

// listDefaultRoutes never exits non-zero, so an empty table still reads as
// success with no output.
const listDefaultRoutes = "ip route list | grep ^default || true"

var devRe = regexp.MustCompile(`\bdev\s+(\S+)`)

// Resolver returns the preferred interface name, or "" when there is none.
type Resolver interface {
	DefaultInterface(ctx context.Context) string
}

// ParseDefaultRoute returns the interface named by the first "dev <name>"
// token in the routing table listing.
func ParseDefaultRoute(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if m := devRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// CommandResolver reads the default route from the "ip" tool. It is only
// implemented for linux; elsewhere it returns "" without running anything.
type CommandResolver struct {
	Runner  shell.Runner
	Timeout time.Duration
	Logger  *slog.Logger
	// GOOS overrides runtime.GOOS.
	GOOS string
}

// DefaultInterface implements Resolver.
func (r CommandResolver) DefaultInterface(ctx context.Context) string {
	goos := r.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	logger := orDiscard(r.Logger)
	if goos != "linux" {
		logger.Debug("Default route lookup not supported", "os", goos)
		return ""
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = shell.DefaultTimeout
	}
	out, err := r.Runner.Run(ctx, listDefaultRoutes, timeout)
	if err != nil {
		logger.Debug("Default route lookup failed", "error", err)
		return ""
	}
	name := ParseDefaultRoute(out)
	logger.Debug("Default route lookup", "interface", name)
	return name
}

// WiredResolver prefers the first interface whose name looks like a wired
// ethernet device ("eth*").
type WiredResolver struct {
	Interfaces netif.Source
	Logger     *slog.Logger
}

// DefaultInterface implements Resolver.
func (r WiredResolver) DefaultInterface(ctx context.Context) string {
	table, err := r.Interfaces.Interfaces(ctx)
	if err != nil {
		orDiscard(r.Logger).Debug("Wired interface lookup failed", "error", err)
		return ""
	}
	for _, iface := range table {
		if strings.HasPrefix(iface.Name, "eth") {
			return iface.Name
		}
	}
	return ""
}

// None never prefers an interface.
type None struct{}

// DefaultInterface implements Resolver.
func (None) DefaultInterface(context.Context) string { return "" }

// Options carries what the resolvers need to be built.
type Options struct {
	Runner     shell.Runner
	Interfaces netif.Source
	Timeout    time.Duration
	Logger     *slog.Logger
}

// New builds the resolver for the named hint source.
func New(source string, opts Options) (Resolver, error) {
	switch source {
	case SourceRoute, "":
		return CommandResolver{Runner: opts.Runner, Timeout: opts.Timeout, Logger: opts.Logger}, nil
	case SourceNetlink:
		return NetlinkResolver{Logger: opts.Logger}, nil
	case SourceWired:
		return WiredResolver{Interfaces: opts.Interfaces, Logger: opts.Logger}, nil
	case SourceNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown hint source %q (want one of %s)", source, strings.Join(Sources, ", "))
	}
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}
