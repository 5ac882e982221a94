//go:build linux

package route

import (
	"context"
	"log/slog"

	"github.com/vishvananda/netlink"
)

// NetlinkResolver reads the default route straight from the kernel routing
// table instead of parsing "ip" output.
type NetlinkResolver struct {
	Logger *slog.Logger
}

// DefaultInterface implements Resolver.
func (r NetlinkResolver) DefaultInterface(context.Context) string {
	logger := orDiscard(r.Logger)

	routes, err := netlink.RouteList(nil, netlink.FAMILY_ALL)
	if err != nil {
		logger.Debug("Netlink route list failed", "error", err)
		return ""
	}
	name := defaultRouteLink(routes, linkName, logger)
	logger.Debug("Netlink default route", "interface", name)
	return name
}

func linkName(index int) (string, error) {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return "", err
	}
	return link.Attrs().Name, nil
}

// defaultRouteLink returns the name of the first default route's link that
// nameOf can resolve.
func defaultRouteLink(routes []netlink.Route, nameOf func(int) (string, error), logger *slog.Logger) string {
	for _, rt := range routes {
		if !isDefault(rt) {
			continue
		}
		index := routeLinkIndex(rt)
		if index == 0 {
			continue
		}
		name, err := nameOf(index)
		if err != nil {
			logger.Debug("Netlink link lookup failed", "index", index, "error", err)
			continue
		}
		return name
	}
	return ""
}

// routeLinkIndex is the outgoing link of rt. Multipath routes carry it on
// their first next hop.
func routeLinkIndex(rt netlink.Route) int {
	if rt.LinkIndex != 0 {
		return rt.LinkIndex
	}
	for _, nh := range rt.MultiPath {
		if nh != nil && nh.LinkIndex != 0 {
			return nh.LinkIndex
		}
	}
	return 0
}

func isDefault(rt netlink.Route) bool {
	if rt.Dst == nil {
		return true
	}
	ones, _ := rt.Dst.Mask.Size()
	return ones == 0 && rt.Dst.IP.IsUnspecified()
}
