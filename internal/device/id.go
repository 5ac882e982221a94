package device

import (
	"fmt"
	"net"
	"strings"
)

// FromMAC derives a stable device identifier from a MAC address: lowercase
// hex digits without separators, e.g. "001122334455".
func FromMAC(mac string) (string, error) {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return "", fmt.Errorf("invalid MAC address %q: %w", mac, err)
	}
	return strings.ReplaceAll(hw.String(), ":", ""), nil
}
