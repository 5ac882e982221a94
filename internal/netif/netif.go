// Package netif exposes the host's network interfaces in the shape the MAC
// scanner reads: interfaces in OS order, each with one entry per address.
package netif

import (
	"context"
	"fmt"
	"slices"

	psnet "github.com/shirou/gopsutil/v4/net"
)

// Address is one address entry of an interface.
type Address struct {
	// MAC is the hardware address reported alongside this entry, "" if none.
	MAC string
	// Internal is true for loopback entries.
	Internal bool
}

// Interface is a named interface and its address entries.
type Interface struct {
	Name      string
	Addresses []Address
}

// Table is the list of interfaces in the order the OS reported them.
type Table []Interface

// Lookup returns the interface called name.
func (t Table) Lookup(name string) (Interface, bool) {
	i := slices.IndexFunc(t, func(iface Interface) bool { return iface.Name == name })
	if i < 0 {
		return Interface{}, false
	}
	return t[i], true
}

// Source supplies the current interface table.
type Source interface {
	Interfaces(ctx context.Context) (Table, error)
}

// Static is a Source backed by a fixed table.
type Static Table

// Interfaces implements Source.
func (s Static) Interfaces(context.Context) (Table, error) {
	return Table(s), nil
}

// System reads the interface table from the operating system.
type System struct{}

// Interfaces implements Source.
func (System) Interfaces(ctx context.Context) (Table, error) {
	stats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	return FromStats(stats), nil
}

// FromStats converts gopsutil interface stats into a Table. Interfaces
// without any address are left out.
func FromStats(stats psnet.InterfaceStatList) Table {
	table := make(Table, 0, len(stats))
	for _, st := range stats {
		if len(st.Addrs) == 0 {
			continue
		}
		internal := slices.Contains(st.Flags, "loopback")
		iface := Interface{Name: st.Name, Addresses: make([]Address, 0, len(st.Addrs))}
		for range st.Addrs {
			iface.Addresses = append(iface.Addresses, Address{MAC: st.HardwareAddr, Internal: internal})
		}
		table = append(table, iface)
	}
	return table
}
