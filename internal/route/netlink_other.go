//go:build !linux

package route

import (
	"context"
	"log/slog"
)

// NetlinkResolver needs a linux kernel; elsewhere it has no answer.
type NetlinkResolver struct {
	Logger *slog.Logger
}

// DefaultInterface implements Resolver.
func (r NetlinkResolver) DefaultInterface(context.Context) string {
	orDiscard(r.Logger).Debug("Netlink route lookup not supported on this platform")
	return ""
}
