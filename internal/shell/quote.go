package shell

import "strings"

// Quote returns s as a single-quoted shell word. The shell expands the
// result back to exactly s, so it is safe to splice into a command string
// whatever s contains.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
