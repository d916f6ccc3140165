package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/andrejsstepanovs/hackbright/config"
	"github.com/andrejsstepanovs/hackbright/db"
	"github.com/andrejsstepanovs/hackbright/shell"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

// errReported marks a failure whose message the shell already printed.
var errReported = errors.New("command failed")

// App carries what every command needs once flags are parsed.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

func (a *App) openStore(ctx context.Context) (*db.Store, error) {
	store, err := db.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.DSN, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (a *App) newShell(store shell.Store, out io.Writer) *shell.Shell {
	return shell.New(store, out,
		shell.WithFormat(shell.Format(a.cfg.Output)),
		shell.WithLogger(a.logger),
	)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// skipsConfig reports whether cmd is one of cobra's built-in help or
// completion commands, which must work with a broken configuration.
func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

func newInitDBCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the students, projects and grades tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE:  app.handleInitDB,
	}
	return cmd
}

// newShellCmd exposes one shell command as a one-shot subcommand.
func newShellCmd(app *App, usage shell.Usage) *cobra.Command {
	cmd := &cobra.Command{
		Use:   usage.Usage,
		Short: usage.Summary,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.handleOneShot(cmd, usage.Name, args)
		},
	}
	// Description words may start with a dash.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hackbright",
		Short: "Track students, class projects and grades",
		Long: `hackbright is a front end for the project tracker database.

Run it without a subcommand for an interactive prompt, or pass a single
command (for example "hackbright student jsmith") to run it and exit.

Flags go before the command name. Put "--" after the command name when its
first argument starts with a dash, for example:

  hackbright new_project -- -beta- A rough draft 50`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsConfig(cmd) {
				return nil
			}
			cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			app.cfg = cfg
			app.logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if cfg.FileUsed != "" {
				app.logger.Debug("using config file", slog.String("path", cfg.FileUsed))
			}
			return nil
		},
		RunE:          app.handleREPL,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "config file (default: ./"+config.DefaultConfigFile+")")
	cmd.PersistentFlags().String("driver", "", "database driver ("+strings.Join(db.Drivers(), "|")+")")
	cmd.PersistentFlags().String("dsn", "", "database connection string (default: "+config.DefaultDSN+")")
	cmd.PersistentFlags().StringP("output", "o", "", "output format (text|table)")
	cmd.PersistentFlags().String("history-file", "", "file to keep prompt history in")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log SQL statements and debug output")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		formats := make([]string, 0, len(shell.Formats()))
		for _, f := range shell.Formats() {
			formats = append(formats, string(f))
		}
		return formats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return db.Drivers(), cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(newInitDBCmd(app))
	for _, usage := range shell.Commands() {
		cmd.AddCommand(newShellCmd(app, usage))
	}
	return cmd
}

func (a *App) handleREPL(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          a.cfg.Prompt,
		HistoryFile:     a.cfg.HistoryFile,
		AutoComplete:    shell.Completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       shell.QuitCommand,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	return a.newShell(store, rl.Stdout()).Run(ctx, rl)
}

func (a *App) handleOneShot(cmd *cobra.Command, name string, args []string) error {
	ctx := cmd.Context()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	sh := a.newShell(store, cmd.OutOrStdout())
	if err := sh.Dispatch(ctx, name, args); err != nil {
		sh.Report(err)
		return errReported
	}
	return nil
}

func (a *App) handleInitDB(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Database schema is ready")
	return nil
}

// Execute initializes and runs the root command. It is the single entry point
// for the command-line interface.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &App{}
	rootCmd := newRootCmd(app)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
