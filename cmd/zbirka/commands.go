package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/zbirka/internal/api"
	"github.com/erazemk/zbirka/internal/archive"
	"github.com/erazemk/zbirka/internal/auth"
	"github.com/erazemk/zbirka/internal/config"
	"github.com/erazemk/zbirka/internal/engine"
	"github.com/erazemk/zbirka/internal/store"
)

var (
	cfg        config.Config
	configPath string
	closeLog   = func() {}

	rootCmd = &cobra.Command{
		Use:           "zbirka",
		Short:         "Track a personal collection of character merchandise",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlagOverrides(cmd, &loaded)
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded

			cleanup, err := setupLogger(cfg.Log)
			if err != nil {
				return err
			}
			closeLog = cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeLog()
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the local JSON API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Print a new API token",
		Args:  cobra.NoArgs,
		RunE:  runToken,
	}

	seriesCmd = &cobra.Command{
		Use:   "series",
		Short: "List series",
		Args:  cobra.NoArgs,
		RunE:  runSeries,
	}

	missingCmd = &cobra.Command{
		Use:   "missing [character]",
		Short: "Show characters still missing across all series",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMissing,
	}

	tradeCmd = &cobra.Command{
		Use:   "trade <series-id> <item-index>",
		Short: "Print the trade offer for an item",
		Args:  cobra.ExactArgs(2),
		RunE:  runTrade,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write a backup document",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	importCmd = &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the archive with a backup document",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}

	rostersCmd = &cobra.Command{
		Use:   "rosters",
		Short: "Print the rosters, one per line",
		Args:  cobra.NoArgs,
		RunE:  runRosters,
	}

	rostersSetCmd = &cobra.Command{
		Use:   "set <file>",
		Short: "Replace the rosters from a file of name:A,B,C lines (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runRostersSet,
	}
)

var (
	serveAddr     string
	tokenReadOnly bool
	seriesTerm    string
	seriesFrom    string
	seriesTo      string
	exportOut     string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "zbirka.yaml", "config file path")
	pf.String("backend", "", "storage backend (sqlite or badger)")
	pf.StringP("db", "d", "", "SQLite database path")
	pf.String("badger-dir", "", "Badger directory")
	pf.StringP("log", "l", "", "log file path (default: stdout/stderr only)")

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config)")
	tokenCmd.Flags().BoolVar(&tokenReadOnly, "read-only", false, "issue a token limited to GET requests")
	seriesCmd.Flags().StringVarP(&seriesTerm, "query", "q", "", "match title or tags")
	seriesCmd.Flags().StringVar(&seriesFrom, "from", "", "earliest date (YYYY-MM-DD)")
	seriesCmd.Flags().StringVar(&seriesTo, "to", "", "latest date (YYYY-MM-DD)")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default: stdout)")

	rostersCmd.AddCommand(rostersSetCmd)
	rootCmd.AddCommand(serveCmd, tokenCmd, seriesCmd, missingCmd, tradeCmd, exportCmd, importCmd, rostersCmd)
}

// applyFlagOverrides copies explicitly set persistent flags over the file
// configuration.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		c.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("db") {
		c.Database, _ = flags.GetString("db")
	}
	if flags.Changed("badger-dir") {
		c.BadgerDir, _ = flags.GetString("badger-dir")
	}
	if flags.Changed("log") {
		c.Log, _ = flags.GetString("log")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, slots, closeStore, err := openArchive(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	slog.Info("storage ready", "backend", cfg.Backend)

	// Loaded from storage, generated on first run.
	secret, err := store.Secret(ctx, slots)
	if err != nil {
		return err
	}
	token, err := auth.GenerateToken(secret, cfg.TokenTTL, false)
	if err != nil {
		return err
	}

	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           api.LoggingMiddleware(api.NewRouter(a, secret)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	fmt.Printf("API token (valid for %s):\n  %s\n\n", cfg.TokenTTL, token)

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing storage")
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	slots, closeStore, err := openSlots(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	secret, err := store.Secret(cmd.Context(), slots)
	if err != nil {
		return err
	}
	token, err := auth.GenerateToken(secret, cfg.TokenTTL, tokenReadOnly)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runSeries(cmd *cobra.Command, args []string) error {
	a, _, closeStore, err := openArchive(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDATE\tITEMS\t")
	for _, s := range a.List(engine.Filter{Term: seriesTerm, From: seriesFrom, To: seriesTo}) {
		title := s.Title
		if s.Favorite {
			title = "★ " + title
		}
		if s.Complete {
			title += " ✓"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t\n", s.ID, title, s.Date, s.ItemCount)
	}
	return tw.Flush()
}

func runMissing(cmd *cobra.Command, args []string) error {
	a, _, closeStore, err := openArchive(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	report := a.MissingReport()
	if len(args) == 1 {
		report = engine.MissingReport{{Character: args[0], Entries: report.For(args[0])}}
	}

	w := cmd.OutOrStdout()
	for _, g := range report {
		fmt.Fprintf(w, "%s (%d)\n", g.Character, len(g.Entries))
		for _, e := range g.Entries {
			marker := ""
			if e.Infinite {
				marker = " ∞"
			}
			fmt.Fprintf(w, "  %s / %s%s\n", e.SeriesTitle, e.ItemName, marker)
		}
	}
	return nil
}

func runTrade(cmd *cobra.Command, args []string) error {
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid item index %q", args[1])
	}

	a, _, closeStore, err := openArchive(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	text, err := a.TradeText(args[0], idx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, _, closeStore, err := openArchive(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	doc, err := a.Export()
	if err != nil {
		return err
	}
	if exportOut == "" {
		_, err = cmd.OutOrStdout().Write(doc)
		return err
	}
	if err := os.WriteFile(exportOut, doc, 0644); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	slog.Info("backup written", "path", exportOut, "bytes", len(doc))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	doc, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	a, _, closeStore, err := openArchive(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := a.Import(cmd.Context(), doc); err != nil {
		return err
	}
	slog.Info("backup imported", "series", len(a.Snapshot().Series))
	return nil
}

func runRosters(cmd *cobra.Command, args []string) error {
	a, _, closeStore, err := openArchive(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	fmt.Fprintln(cmd.OutOrStdout(), archive.FormatRosters(a.Settings().Rosters))
	return nil
}

func runRostersSet(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	a, _, closeStore, err := openArchive(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	s := a.Settings()
	s.Rosters = archive.ParseRosters(strings.TrimSpace(string(text)))
	if err := a.UpdateSettings(cmd.Context(), s); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), archive.FormatRosters(a.Settings().Rosters))
	return nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
