package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kardianos/service"

	"guessmac/internal/config"
	"guessmac/internal/hwaddr"
	"guessmac/internal/netif"
)

type fakeRunner struct {
	route string
	links string
}

func (f fakeRunner) Run(_ context.Context, command string, _ time.Duration) (string, error) {
	if strings.HasPrefix(command, "ip route") {
		return f.route, nil
	}
	return f.links, nil
}

type nopServiceLogger struct{ n int }

func (l *nopServiceLogger) count() error {
	l.n++
	return nil
}

func (l *nopServiceLogger) Error(v ...interface{}) error {
	return l.count()
}

func (l *nopServiceLogger) Warning(v ...interface{}) error {
	return l.count()
}

func (l *nopServiceLogger) Info(v ...interface{}) error {
	return l.count()
}

func (l *nopServiceLogger) Errorf(format string, a ...interface{}) error {
	return l.count()
}

func (l *nopServiceLogger) Warningf(format string, a ...interface{}) error {
	return l.count()
}

func (l *nopServiceLogger) Infof(format string, a ...interface{}) error {
	return l.count()
}

var testTable = netif.Table{
	{Name: "lo", Addresses: []netif.Address{{Internal: true}}},
	{Name: "wlan0", Addresses: []netif.Address{{MAC: "aa:bb:cc:dd:ee:ff"}}},
	{Name: "eth0", Addresses: []netif.Address{{MAC: "00:11:22:33:44:55"}, {MAC: "00:11:22:33:44:55"}}},
}

func testApp(table netif.Table, runner fakeRunner) *app {
	return &app{
		cfg:        config.Default(),
		interfaces: netif.Static(table),
		runner:     runner,
		sysLogger:  func() (service.Logger, error) { return &nopServiceLogger{}, nil },
	}
}

func run(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()
	defer a.close()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// The preferred source below is "wired", so the answer does not depend on
// the platform the test runs on.
func TestRoot_PrintsMAC(t *testing.T) {
	out, _, err := run(t, testApp(testTable, fakeRunner{}), "--prefer", "wired")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "00:11:22:33:44:55\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestRoot_JSON(t *testing.T) {
	out, _, err := run(t, testApp(testTable, fakeRunner{}), "--prefer", "none", "--json")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	var res hwaddr.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("Invalid JSON %q: %v", out, err)
	}
	if res.MAC != "aa:bb:cc:dd:ee:ff" || res.Stage != hwaddr.StageTable || res.Interface != "wlan0" {
		t.Errorf("Unexpected result %+v", res)
	}
}

func TestRoot_QR(t *testing.T) {
	out, _, err := run(t, testApp(testTable, fakeRunner{}), "--prefer", "none", "--qr")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasSuffix(out, "aa:bb:cc:dd:ee:ff\n") || len(out) < 100 {
		t.Errorf("Expected QR code followed by the MAC, got %q", out)
	}
}

func TestRoot_LinkFallback(t *testing.T) {
	runner := fakeRunner{links: "2: eth0: <UP>\\    link/ether 02:00:00:00:00:01 brd ff:ff:ff:ff:ff:ff\n"}
	out, _, err := run(t, testApp(nil, runner), "--prefer", "none")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "02:00:00:00:00:01\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestRoot_NotFound(t *testing.T) {
	_, _, err := run(t, testApp(nil, fakeRunner{}), "--prefer", "none")
	if !errors.Is(err, hwaddr.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestRoot_InvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"--prefer", "dhcp"},
		{"--timeout", "0s"},
		{"--qr", "--json"},
	} {
		if _, _, err := run(t, testApp(testTable, fakeRunner{}), args...); err == nil {
			t.Errorf("Expected error for %v", args)
		}
	}
}

func TestRoot_VerboseLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "guessmac.log")

	_, stderr, err := run(t, testApp(testTable, fakeRunner{}), "--prefer", "none", "-v", "--log-file", logPath)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if stderr != "" {
		t.Errorf("Expected no stderr logs with --log-file, got %q", stderr)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "MAC found in interface table") {
		t.Errorf("Expected debug logs in file, got %q", data)
	}
}

func TestRoot_SysLog(t *testing.T) {
	svc := &nopServiceLogger{}
	a := testApp(nil, fakeRunner{})
	a.sysLogger = func() (service.Logger, error) { return svc, nil }

	// A failing interface table is logged as a warning.
	a.interfaces = failingSource{}
	run(t, a, "--prefer", "none", "--syslog")

	if svc.n == 0 {
		t.Error("Expected records on the system logger")
	}
}

type failingSource struct{}

func (failingSource) Interfaces(context.Context) (netif.Table, error) {
	return nil, fmt.Errorf("permission denied")
}

func TestID(t *testing.T) {
	out, _, err := run(t, testApp(testTable, fakeRunner{}), "id", "--prefer", "wired")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "001122334455\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestIdentity_JSON(t *testing.T) {
	out, _, err := run(t, testApp(testTable, fakeRunner{}), "identity", "--prefer", "wired", "--json")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	var rep map[string]any
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("Invalid JSON %q: %v", out, err)
	}
	if rep["mac"] != "00:11:22:33:44:55" || rep["device_id"] != "001122334455" || rep["hint"] != "eth0" {
		t.Errorf("Unexpected report %v", rep)
	}
}

func TestIdentity_Text(t *testing.T) {
	out, _, err := run(t, testApp(nil, fakeRunner{}), "identity", "--prefer", "none")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "MAC Error:") || !strings.Contains(out, "Go Version:") {
		t.Errorf("Unexpected report %q", out)
	}
}

func TestInterfaces(t *testing.T) {
	out, _, err := run(t, testApp(testTable, fakeRunner{}), "interfaces", "--prefer", "wired")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("Expected header and 4 entries, got %q", out)
	}
	if !strings.HasPrefix(lines[3], "eth0 *") || !strings.HasSuffix(lines[3], "<") {
		t.Errorf("Expected first eth0 entry to be preferred and picked: %q", lines[3])
	}
	if strings.HasSuffix(lines[4], "<") {
		t.Errorf("Only one entry may be picked: %q", lines[4])
	}
	if !strings.Contains(lines[1], "-") {
		t.Errorf("Expected loopback entry without MAC: %q", lines[1])
	}
}

type failingCloser struct{}

func (failingCloser) Close() error { return errors.New("disk full") }

func TestExecute_ReportsCloseError(t *testing.T) {
	a := testApp(testTable, fakeRunner{})
	a.closers = append(a.closers, failingCloser{})

	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), a, []string{"--prefer", "wired"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Expected close error to be reported, got %v", err)
	}
	if stdout.String() != "00:11:22:33:44:55\n" {
		t.Errorf("Unexpected output %q", stdout.String())
	}
}

func TestExecute_CommandErrorWinsOverCloseError(t *testing.T) {
	a := testApp(nil, fakeRunner{})
	a.closers = append(a.closers, failingCloser{})

	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), a, []string{"--prefer", "none"}, &stdout, &stderr)
	if !errors.Is(err, hwaddr.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
