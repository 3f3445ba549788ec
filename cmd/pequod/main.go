package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/pequod/internal/config"
	"github.com/pders01/pequod/internal/debuglog"
	"github.com/pders01/pequod/internal/feed"
	"github.com/pders01/pequod/internal/opener"
	"github.com/pders01/pequod/internal/render"
	"github.com/pders01/pequod/internal/search"
	"github.com/pders01/pequod/internal/storage"
	"github.com/pders01/pequod/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

type options struct {
	configPath string
	dbPath     string
	backend    string
	maxTTLDays int
	logLevel   string
	quiet      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "pequod",
		Short:        "A terminal reader for RSS and Atom feeds",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReader(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to configuration file")
	flags.StringVar(&opts.dbPath, "db", "", "path to database file (overrides config)")
	flags.StringVar(&opts.backend, "backend", "", "storage backend: bolt or sqlite")
	flags.IntVar(&opts.maxTTLDays, "max-ttl-days", 0, "drop unread entries older than this many days at startup")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error, off")
	root.Flags().BoolVar(&opts.quiet, "quiet", false, "skip the startup banner")

	root.AddCommand(newVersionCmd(), newConfigCmd(opts), newSearchCmd(opts))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pequod %s\n", Version)
			fmt.Fprintln(out, "terminal feed reader")
			fmt.Fprintln(out, "github.com/pders01/pequod")
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			out, err := config.Encode(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	return cfgCmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search stored entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			store, err := storage.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			feeds, err := store.LoadAll()
			if err != nil {
				return fmt.Errorf("loading feeds: %w", err)
			}

			idx, err := search.NewIndex()
			if err != nil {
				return err
			}
			defer idx.Close()
			if err := idx.Add(feeds); err != nil {
				return err
			}

			results, err := idx.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			printResults(cmd, results)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")
	return cmd
}

func printResults(cmd *cobra.Command, results []search.Result) {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No results")
		return
	}
	for _, r := range results {
		date := ""
		if !r.Published.IsZero() {
			date = r.Published.Local().Format("2006-01-02") + "  "
		}
		fmt.Fprintf(out, "%s%s › %s\n", date, r.FeedTitle, render.Truncate(r.EntryTitle, 100))
		if r.Link != "" {
			fmt.Fprintf(out, "    %s\n", r.Link)
		}
	}
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dbPath != "" {
		cfg.Database.Path = config.ExpandPath(opts.dbPath)
	}
	if opts.backend != "" {
		cfg.Database.Backend = opts.backend
	}
	if opts.maxTTLDays > 0 {
		cfg.Feed.MaxEntryAge = time.Duration(opts.maxTTLDays) * 24 * time.Hour
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

func runReader(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return err
	}
	defer debuglog.Close()

	if !opts.quiet {
		tui.ShowBanner(cmd.OutOrStdout(), Version)
	}

	store, err := storage.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	feeds, err := loadFeeds(store, cfg.Feed.MaxEntryAge, time.Now())
	if err != nil {
		return err
	}

	app := tui.NewApp(cfg, store, feed.NewManager(cfg), opener.NewLauncher(cfg), feeds)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running reader: %w", err)
	}
	return nil
}

// loadFeeds drops stale unread entries and loads what remains. Expiry
// failures are logged and ignored; a load failure is fatal.
func loadFeeds(store storage.Store, maxAge time.Duration, now time.Time) ([]*storage.Feed, error) {
	if maxAge > 0 {
		n, err := store.ExpireUnreadOlderThan(now.Add(-maxAge))
		if err != nil {
			debuglog.Warnf("expiring old entries: %v", err)
		} else if n > 0 {
			debuglog.Infof("expired %d unread entries older than %s", n, maxAge)
		}
	}

	feeds, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading feeds: %w", err)
	}
	debuglog.Infof("loaded %d feeds", len(feeds))
	return feeds, nil
}
