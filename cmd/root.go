// Package cmd wires fastfolder's command line.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/montrey/fastfolder/action"
	"github.com/montrey/fastfolder/config"
	"github.com/montrey/fastfolder/debounce"
	"github.com/montrey/fastfolder/logging"
	"github.com/montrey/fastfolder/search"
	"github.com/montrey/fastfolder/store"
	"github.com/montrey/fastfolder/ui"
)

// errNoMatch makes the process exit with status 1 without printing anything.
var errNoMatch = errors.New("no matching folder")

// App carries the state shared by every command.
type App struct {
	v       *viper.Viper
	cfgFile string
	fs      afero.Fs

	Config *config.Config
	DB     *store.DB
}

// NewApp creates an App reading the real filesystem.
func NewApp() *App {
	return &App{v: config.NewViper(), fs: afero.NewOsFs()}
}

// Execute runs the root command and exits on failure.
func Execute() {
	root := NewCmdRoot(NewApp())
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errNoMatch) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// NewCmdRoot builds the command tree.
func NewCmdRoot(a *App) *cobra.Command {
	var startAction string

	cmd := &cobra.Command{
		Use:   "fastfolder",
		Short: "Find a folder fast and open it.",
		Long: heredoc.Doc(`
			Search folders under your configured roots as you type. Recently
			opened folders are listed first.

			The selected folder is printed on exit, so the picker can drive
			shell navigation:
			  cd "$(fastfolder)"
		`),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPicker(cmd, startAction)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is "+config.ConfigDir()+"/config.yaml)")
	flags.String("paths", "", "comma-separated folders to search")
	flags.Int("max-history", config.DefaultMaxHistory, "number of recent folders to keep")
	flags.Int("depth", config.DefaultDepth, "levels below each root to search (1-5)")
	flags.Int("max-results", config.DefaultMaxResults, "maximum number of results")
	flags.Int("debounce", config.DefaultDebounceMS, "milliseconds to wait after typing before searching")
	flags.String("db", "", "settings database path")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "console", "log format: json, console")
	flags.String("log-file", "", "log output path")

	bind := map[string]string{
		config.KeySearchPaths:     "paths",
		config.KeyMaxHistoryItems: "max-history",
		config.KeySearchDepth:     "depth",
		config.KeyMaxResults:      "max-results",
		config.KeyDebounceMS:      "debounce",
		config.KeyDBPath:          "db",
		config.KeyLogLevel:        "log-level",
		config.KeyLogFormat:       "log-format",
		config.KeyLogFile:         "log-file",
	}
	for key, name := range bind {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	cmd.Flags().StringVarP(&startAction, "action", "a", "", "start with action: explorer|terminal|editor|copy")

	cmd.AddCommand(NewCmdFind(a))
	cmd.AddCommand(NewCmdHistory(a))
	cmd.AddCommand(NewCmdConfig(a))

	return cmd
}

func (a *App) setup() error {
	if err := config.ReadFile(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.Config = cfg

	if err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		OutputPath: cfg.LogFile,
	}); err != nil {
		logging.InitNop()
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	a.DB = db
	logging.Debug("configuration loaded",
		logging.Strings("search_paths", cfg.SearchPaths),
		logging.Int("search_depth", cfg.SearchDepth),
		logging.String("db", cfg.DBPath),
	)
	return nil
}

func (a *App) close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			logging.Warn("failed to close database", logging.Err(err))
		}
	}
	_ = logging.Sync()
}

func (a *App) searchFS() search.FS {
	return search.NewFS(a.fs)
}

func (a *App) newHistory() *store.History {
	return store.NewHistory(a.DB, a.searchFS(), a.Config.MaxHistoryItems)
}

func (a *App) newSearcher() *search.Searcher {
	fsys := a.searchFS()
	walker := search.NewWalker(fsys,
		search.WithSkipDirs(a.Config.SkipDirs...),
		search.WithGitignore(a.Config.RespectGitignore),
	)
	return search.NewSearcher(fsys, walker, search.Options{
		Roots:           a.Config.SearchPaths,
		MaxDepth:        a.Config.SearchDepth,
		MaxResults:      a.Config.MaxResults,
		MaxHistoryItems: a.Config.MaxHistoryItems,
	}, logging.Named("search"))
}

// defaultAction resolves the flag, then the saved setting, then the config.
func (a *App) defaultAction(flag string) (action.Kind, error) {
	if flag != "" {
		kind, ok := action.ParseKind(flag)
		if !ok {
			return "", fmt.Errorf("invalid action: %s", flag)
		}
		return kind, nil
	}
	if saved, ok, err := a.DB.Get(action.SettingKey); err == nil && ok {
		if kind, valid := action.ParseKind(saved); valid {
			return kind, nil
		}
	}
	kind, _ := action.ParseKind(a.Config.Actions.Default)
	return kind, nil
}

func (a *App) runPicker(cmd *cobra.Command, startAction string) error {
	kind, err := a.defaultAction(startAction)
	if err != nil {
		return err
	}

	debouncer := debounce.New(time.Duration(a.Config.DebounceMS) * time.Millisecond)
	defer debouncer.Stop()

	model := ui.New(ui.Deps{
		Searcher:  a.newSearcher(),
		History:   a.newHistory(),
		Settings:  a.DB,
		Opener:    action.NewOpener(a.Config.Actions),
		Debouncer: debouncer,
		Action:    kind,
		Logger:    logging.Named("ui"),
	})

	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		logging.Error("picker failed", zap.Error(err))
		return fmt.Errorf("picker failed: %w", err)
	}

	m, ok := final.(ui.Model)
	if !ok || m.Selected() == "" {
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), m.Selected())
	if err := m.HistoryError(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", err)
	}
	return nil
}
