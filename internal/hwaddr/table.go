package hwaddr

import "guessmac/internal/netif"

// ScanTable picks a MAC from the interface table. The preferred interface
// is tried first; after that every interface is tried in table order. Only
// non-internal entries carrying a MAC count.
func ScanTable(preferred string, table netif.Table) (string, bool) {
	_, mac, ok := MatchTable(preferred, table)
	return mac, ok
}

// MatchTable is ScanTable that also names the interface the MAC belongs to.
func MatchTable(preferred string, table netif.Table) (iface, mac string, ok bool) {
	if preferred != "" {
		if iface, ok := table.Lookup(preferred); ok {
			if mac, ok := externalMAC(iface); ok {
				return iface.Name, mac, true
			}
		}
	}
	for _, candidate := range table {
		if mac, ok := externalMAC(candidate); ok {
			return candidate.Name, mac, true
		}
	}
	return "", "", false
}

func externalMAC(iface netif.Interface) (string, bool) {
	for _, addr := range iface.Addresses {
		if !addr.Internal && addr.MAC != "" {
			return addr.MAC, true
		}
	}
	return "", false
}
