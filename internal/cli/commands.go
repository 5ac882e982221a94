package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"

	"guessmac/internal/device"
	"guessmac/internal/hwaddr"
	"guessmac/internal/route"
	"guessmac/internal/sysinfo"
)

// Execute runs the command line and returns the error to report, if any.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return execute(ctx, newApp(), args, stdout, stderr)
}

func execute(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil && err == nil {
		err = fmt.Errorf("close log output: %w", cerr)
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	cfg := a.cfg

	var rootCmd = &cobra.Command{
		Use:           "guessmac",
		Short:         "Print the primary MAC address of this host",
		Long:          "Print the MAC address of the interface this host most likely uses for outbound traffic.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return a.setupLogging(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.guesser()
			if err != nil {
				return err
			}
			res, err := g.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Debug("Guessed MAC", "mac", res.MAC, "stage", res.Stage, "hint", res.Hint)
			return a.print(cmd.OutOrStdout(), res.MAC, res)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.DurationVar(&cfg.CommandTimeout, "timeout", cfg.CommandTimeout, "timeout for each external command")
	flags.StringVar(&cfg.HintSource, "prefer", cfg.HintSource, "preferred interface source: "+strings.Join(route.Sources, ", "))
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file instead of stderr")
	flags.IntVar(&cfg.LogMaxSizeMB, "log-max-size", cfg.LogMaxSizeMB, "rotate the log file after this many MB")
	flags.IntVar(&cfg.LogMaxBackups, "log-max-backups", cfg.LogMaxBackups, "number of rotated log files to keep")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "log every step of the guess")
	flags.BoolVar(&cfg.SysLog, "syslog", cfg.SysLog, "also send logs to the system logger")
	flags.BoolVar(&cfg.QR, "qr", cfg.QR, "render the answer as a QR code")
	flags.BoolVar(&cfg.JSON, "json", cfg.JSON, "print the answer as JSON")

	var idCmd = &cobra.Command{
		Use:   "id",
		Short: "Print a device identifier derived from the primary MAC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.guesser()
			if err != nil {
				return err
			}
			res, err := g.Resolve(cmd.Context())
			if err != nil {
				return err
			}
			id, err := device.FromMAC(res.MAC)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), id, map[string]string{"device_id": id, "mac": res.MAC})
		},
	}

	var identityCmd = &cobra.Command{
		Use:   "identity",
		Short: "Show host facts together with the primary MAC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.guesser()
			if err != nil {
				return err
			}
			rep := sysinfo.Collect(cmd.Context(), g)
			if cfg.JSON {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return writeReport(cmd.OutOrStdout(), rep)
		},
	}

	var interfacesCmd = &cobra.Command{
		Use:   "interfaces",
		Short: "List the interface table as the scanner sees it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.guesser()
			if err != nil {
				return err
			}
			return listInterfaces(cmd.Context(), cmd.OutOrStdout(), g)
		},
	}

	rootCmd.AddCommand(idCmd, identityCmd, interfacesCmd)
	return rootCmd
}

// print writes text as a plain line, a QR code or, with --json, v as JSON.
func (a *app) print(w io.Writer, text string, v any) error {
	switch {
	case a.cfg.JSON:
		return writeJSON(w, v)
	case a.cfg.QR:
		qrterminal.GenerateHalfBlock(text, qrterminal.L, w)
		_, err := fmt.Fprintln(w, text)
		return err
	default:
		_, err := fmt.Fprintln(w, text)
		return err
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReport(w io.Writer, rep sysinfo.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct{ k, v string }{
		{"Hostname", rep.Hostname},
		{"OS", rep.OS},
		{"Platform", strings.TrimSpace(rep.Platform + " " + rep.PlatformVersion)},
		{"Kernel", rep.KernelVersion},
		{"Arch", rep.Arch},
		{"Host ID", rep.HostID},
		{"MAC Address", rep.MAC},
		{"Device ID", rep.DeviceID},
		{"Found In", rep.Stage},
		{"Interface", rep.Interface},
		{"Preferred", rep.Hint},
		{"MAC Error", rep.MACError},
		{"Go Version", rep.GoVersion},
	}
	for _, r := range rows {
		if r.v == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", r.k, r.v)
	}
	return tw.Flush()
}

// listInterfaces prints every table entry. "*" marks the preferred
// interface and "<" the entry the table scan picks.
func listInterfaces(ctx context.Context, w io.Writer, g hwaddr.Guesser) error {
	table, err := g.Interfaces.Interfaces(ctx)
	if err != nil {
		return err
	}
	hint := g.Hint.DefaultInterface(ctx)
	pickedIface, pickedMAC, found := hwaddr.MatchTable(hint, table)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMAC\tINTERNAL\t")
	for _, iface := range table {
		name := iface.Name
		if name == hint {
			name += " *"
		}
		for _, addr := range iface.Addresses {
			mark := ""
			if found && iface.Name == pickedIface && !addr.Internal && addr.MAC == pickedMAC {
				mark = "<"
				found = false
			}
			mac := addr.MAC
			if mac == "" {
				mac = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%v\t%s\n", name, mac, addr.Internal, mark)
		}
	}
	return tw.Flush()
}
