// Package shell maps textual commands onto tracker queries and renders the
// results. It runs both the interactive loop and one-shot invocations.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/andrejsstepanovs/hackbright/db"
	"github.com/andrejsstepanovs/hackbright/models"
	"github.com/chzyer/readline"
)

const InvalidEntry = "Invalid Entry. Try again."

// Store is the set of queries the shell dispatches to.
type Store interface {
	StudentByGithub(ctx context.Context, github string) (models.Student, error)
	CreateStudent(ctx context.Context, student models.Student) error
	ProjectsByTitle(ctx context.Context, title string) ([]models.Project, error)
	CreateProject(ctx context.Context, project models.Project) (int64, error)
	GradeFor(ctx context.Context, github, title string) (int, error)
	CreateGrade(ctx context.Context, grade models.Grade) error
	UpdateGrade(ctx context.Context, grade models.Grade) (int64, error)
}

// LineReader yields one line of input per call. *readline.Instance
// satisfies it.
type LineReader interface {
	Readline() (string, error)
}

// Format selects how lookup results are printed.
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
)

// Formats lists the accepted output formats.
func Formats() []Format {
	return []Format{FormatText, FormatTable}
}

// Shell executes commands against a Store and writes their results to out.
type Shell struct {
	store  Store
	out    io.Writer
	format Format
	logger *slog.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithFormat sets the output format. The default is FormatText.
func WithFormat(f Format) Option {
	return func(s *Shell) { s.format = f }
}

// WithLogger sets the logger for diagnostics. Output goes nowhere by default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// New returns a Shell that prints to out.
func New(store Store, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		store:  store,
		out:    out,
		format: FormatText,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads and executes lines until quit, end of input or ctx is done.
// Command failures are reported to the output and never end the loop.
func (s *Shell) Run(ctx context.Context, in LineReader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}

		quit, err := s.Execute(ctx, line)
		if err != nil {
			s.Report(err)
		}
		if quit {
			return nil
		}
	}
}

// Execute runs a single input line. quit is true when the line asks to end
// the session; nothing else is executed in that case.
func (s *Shell) Execute(ctx context.Context, line string) (quit bool, err error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false, nil
	}
	if tokens[0] == QuitCommand {
		return true, nil
	}
	return false, s.Dispatch(ctx, tokens[0], tokens[1:])
}

// Dispatch runs the named command with args. Unknown names print the
// invalid entry message and are not an error.
func (s *Shell) Dispatch(ctx context.Context, name string, args []string) error {
	c, ok := lookup(name)
	if !ok {
		s.logger.Debug("unrecognized command", slog.String("command", name))
		s.printf("%s\n", InvalidEntry)
		return nil
	}

	if err := c.checkArity(args); err != nil {
		return err
	}

	s.logger.Debug("running command", slog.String("command", name), slog.Int("args", len(args)))
	err := c.run(ctx, s, args)

	var argsErr *ArgsError
	if errors.As(err, &argsErr) && argsErr.Usage == "" {
		argsErr.Usage = c.usage
	}
	return err
}

// Report prints err in the form a user at the prompt should see it.
func (s *Shell) Report(err error) {
	var (
		argsErr  *ArgsError
		notFound *db.NotFoundError
	)
	switch {
	case errors.As(err, &argsErr):
		if argsErr.Reason != "" {
			s.printf("Invalid %s: %s\n", argsErr.Command, argsErr.Reason)
		}
		s.printf("Usage: %s\n", argsErr.Usage)
	case errors.As(err, &notFound) && notFound.Title != "":
		s.printf("No %s for %q on %q.\n", notFound.Entity, notFound.Github, notFound.Title)
	case errors.As(err, &notFound):
		s.printf("No %s with github %q.\n", notFound.Entity, notFound.Github)
	default:
		s.logger.Error("command failed", slog.Any("error", err))
		s.printf("Error: %v\n", err)
	}
}

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// Completer offers the command names for tab completion.
func Completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commands)+1)
	for _, c := range commands {
		items = append(items, readline.PcItem(c.name))
	}
	items = append(items, readline.PcItem(QuitCommand))
	return readline.NewPrefixCompleter(items...)
}
