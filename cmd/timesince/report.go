package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/timesince/internal/auth"
	"github.com/verte-zerg/timesince/internal/report"
)

var errSignedOut = errors.New("not signed in (run timesince to sign in)")

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print your trackers",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export your trackers as YAML",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	r, err := buildReport(cmd)
	if err != nil {
		return err
	}
	width := 0
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}
	return report.WriteTable(cmd.OutOrStdout(), r, width)
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	r, err := buildReport(cmd)
	if err != nil {
		return err
	}
	return report.WriteYAML(cmd.OutOrStdout(), r)
}

// buildReport resolves the saved session and loads its trackers.
func buildReport(cmd *cobra.Command) (report.Report, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return report.Report{}, err
	}
	logger, cleanupLogger := setupLogger(s, false)
	defer cleanupLogger()

	st, err := openStore(s)
	if err != nil {
		return report.Report{}, err
	}
	defer closeStore(st)

	ctx := commandContext(cmd)
	provider := auth.NewProvider(st, s.sessionPath, auth.Options{SessionTTL: s.sessionTTL, Logger: logger})
	identity, err := provider.Session(ctx)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to restore session: %w", err)
	}
	if identity == nil {
		return report.Report{}, errSignedOut
	}
	r, err := report.Build(ctx, st, identity.UserID, identity.Email, time.Now())
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to load trackers: %w", err)
	}
	return r, nil
}
