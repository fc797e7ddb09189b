package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/timesince/internal/auth"
	"github.com/verte-zerg/timesince/internal/config"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show config, database, and session status",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, cleanupLogger := setupLogger(s, false)
	defer cleanupLogger()

	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer closeStore(st)

	current, pending, err := st.Schema()
	if err != nil {
		return err
	}

	provider := auth.NewProvider(st, s.sessionPath, auth.Options{SessionTTL: s.sessionTTL, Logger: logger})
	identity, err := provider.Session(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	session := "signed out"
	if identity != nil {
		session = "signed in as " + identity.Email
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config:   %s\n", config.DefaultConfigPath())
	fmt.Fprintf(out, "database: %s (%s)\n", s.dbPath, st.Driver())
	fmt.Fprintf(out, "schema:   version %d (%d pending)\n", current, pending)
	fmt.Fprintf(out, "session:  %s\n", session)
	return nil
}
