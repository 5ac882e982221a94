package hwaddr

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"guessmac/internal/shell"
)

const listLinks = "ip -o link show | grep -v link/loopback"

var macRe = regexp.MustCompile(`\blink/\S*\s((?:[0-9a-fA-F]{2}:){5}[0-9a-fA-F]{2})\b`)

// LinkCommand builds the shell command listing non-loopback links. With a
// preferred interface only that link is listed, falling back to all links
// when it is unknown or is a loopback device.
func LinkCommand(preferred string) string {
	if preferred == "" {
		return listLinks
	}
	return fmt.Sprintf("(ip -o link show dev %s | grep -v link/loopback) || (%s)", shell.Quote(preferred), listLinks)
}

// ParseLinks returns the first hardware address in "ip -o link" output, as
// written in the output.
func ParseLinks(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		if m := macRe.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ScanLinks runs LinkCommand and parses its output. Any command failure,
// including a timeout, ends in a *NotFoundError wrapping that failure.
func ScanLinks(ctx context.Context, runner shell.Runner, preferred string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = shell.DefaultTimeout
	}
	out, err := runner.Run(ctx, LinkCommand(preferred), timeout)
	if err != nil {
		return "", &NotFoundError{Err: err}
	}
	mac, ok := ParseLinks(out)
	if !ok {
		return "", &NotFoundError{}
	}
	return mac, nil
}
