// Package main provides the CLI entrypoint for timesince.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/timesince/internal/auth"
	"github.com/verte-zerg/timesince/internal/board"
	"github.com/verte-zerg/timesince/internal/config"
	"github.com/verte-zerg/timesince/internal/gate"
	"github.com/verte-zerg/timesince/internal/logging"
	"github.com/verte-zerg/timesince/internal/reorder"
	"github.com/verte-zerg/timesince/internal/share"
	"github.com/verte-zerg/timesince/internal/store"
	"github.com/verte-zerg/timesince/internal/tui"
)

const defaultLogLevel = "info"

// settings is the resolved configuration: defaults, then the config file
// and environment, then flags.
type settings struct {
	dbDriver    string
	dbPath      string
	sessionPath string
	logPath     string
	logLevel    string

	swapDelay   time.Duration
	settleDelay time.Duration
	tick        time.Duration
	shareCmd    string
	sessionTTL  time.Duration

	addr    string
	siteURL string
}

var flags settings

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "timesince",
		Short:         "Track how much time has passed since important events",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTUICmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.dbDriver, "db-driver", store.DriverSQLite, "database driver (sqlite or duckdb)")
	pf.StringVar(&flags.dbPath, "db", "", "database path (default: $XDG_DATA_HOME/timesince/timesince.db)")
	pf.StringVar(&flags.logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	pf.DurationVar(&flags.sessionTTL, "session-ttl", auth.DefaultSessionTTL, "how long a sign-in lasts")

	rootCmd.Flags().DurationVar(&flags.swapDelay, "swap-delay", reorder.DefaultTransition, "pause before each card swap while sorting")
	rootCmd.Flags().DurationVar(&flags.settleDelay, "settle-delay", reorder.DefaultSettle, "pause after each card swap while sorting")
	rootCmd.Flags().DurationVar(&flags.tick, "tick", tui.DefaultTick, "readout refresh interval")
	rootCmd.Flags().StringVar(&flags.shareCmd, "share-cmd", "", "command that receives share text on stdin")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())

	return rootCmd
}

// loadSettings overlays the config file and environment onto flags the
// user did not set explicitly.
func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}

	s := flags
	applyStringConfig(cmd, "db-driver", &s.dbDriver, fileCfg.Store.Driver)
	applyStringConfig(cmd, "db", &s.dbPath, fileCfg.Store.Path)
	applyDurationConfig(cmd, "session-ttl", &s.sessionTTL, fileCfg.Auth.SessionTTL)
	applyDurationConfig(cmd, "swap-delay", &s.swapDelay, fileCfg.UI.SwapDelay)
	applyDurationConfig(cmd, "settle-delay", &s.settleDelay, fileCfg.UI.SettleDelay)
	applyDurationConfig(cmd, "tick", &s.tick, fileCfg.UI.Tick)
	applyStringConfig(cmd, "share-cmd", &s.shareCmd, fileCfg.Share.Command)
	applyStringConfig(cmd, "addr", &s.addr, fileCfg.Server.Addr)
	applyStringConfig(cmd, "site-url", &s.siteURL, fileCfg.Server.SiteURL)

	if s.dbPath == "" {
		s.dbPath = config.DefaultDBPath()
		if s.dbDriver == store.DriverDuckDB {
			s.dbPath = strings.TrimSuffix(s.dbPath, filepath.Ext(s.dbPath)) + ".duckdb"
		}
	}
	s.sessionPath = config.DefaultSessionPath()
	s.logPath = config.DefaultLogPath()

	if err := validateSettings(s); err != nil {
		return settings{}, err
	}
	return s, nil
}

func validateSettings(s settings) error {
	switch s.dbDriver {
	case store.DriverSQLite, store.DriverDuckDB:
	default:
		return fmt.Errorf("--db-driver must be %q or %q", store.DriverSQLite, store.DriverDuckDB)
	}
	if s.swapDelay < 0 || s.settleDelay < 0 {
		return fmt.Errorf("--swap-delay and --settle-delay must be >= 0")
	}
	if s.tick <= 0 {
		return fmt.Errorf("--tick must be > 0")
	}
	if s.sessionTTL <= 0 {
		return fmt.Errorf("--session-ttl must be > 0")
	}
	if _, err := logging.ParseLevel(s.logLevel); err != nil {
		return err
	}
	return nil
}

func setupLogger(s settings, stderr bool) (*slog.Logger, func()) {
	level, err := logging.ParseLevel(s.logLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.Setup(logging.Options{Path: s.logPath, Stderr: stderr, Level: level})
}

func openStore(s settings) (*store.Store, error) {
	st, err := store.OpenDriver(s.dbDriver, s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("timesince needs an interactive terminal (try: timesince list)")
	}
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

	provider := auth.NewProvider(st, s.sessionPath, auth.Options{SessionTTL: s.sessionTTL, Logger: logger})
	trackers := board.New(st, reorder.NewAnimator(s.swapDelay, s.settleDelay), logger)

	bridge := tui.NewBridge()
	defer bridge.Close()
	trackers.AddListener(bridge)

	sessions := gate.New(provider, trackers, logger)
	sessions.OnChange(bridge.GateChanged)
	defer sessions.Stop()

	model := tui.NewModel(tui.Options{
		Board:  trackers,
		Auth:   provider,
		Gate:   sessions,
		Sharer: share.New(s.shareCmd),
		Bridge: bridge,
		Tick:   s.tick,
		Logger: logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag != nil && flag.Changed {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# timesince configuration
# Uncomment a value to enable it. CLI flags override config values, and
# TIMESINCE_* environment variables (e.g. TIMESINCE_UI_TICK) override the file.

[store]
# driver = %q           # sqlite or duckdb
# path = ""                 # Database path (default under $XDG_DATA_HOME)

[server]
# addr = %q    # Webhook listen address
# site-url = %q

[ui]
# swap-delay = %q        # Pause before each card swap while sorting
# settle-delay = %q      # Pause after each card swap while sorting
# tick = %q                # Readout refresh interval

[share]
# command = ""              # Receives share text on stdin, e.g. "wl-copy"

[auth]
# session-ttl = %q       # How long a sign-in lasts
`,
		store.DriverSQLite,
		defaultAddr,
		defaultSiteURL,
		reorder.DefaultTransition.String(),
		reorder.DefaultSettle.String(),
		tui.DefaultTick.String(),
		auth.DefaultSessionTTL.String(),
	)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
