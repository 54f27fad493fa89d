// Package cli holds the flag and logger plumbing shared by the commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
	"github.com/joseph-ayodele/restaurant-seeder/internal/common"
	"github.com/joseph-ayodele/restaurant-seeder/internal/pipeline"
)

// LogOptions are the logging flags every command accepts.
type LogOptions struct {
	Format string
	Level  string
}

// BindLogFlags registers --log-format and --log-level.
func BindLogFlags(fs *pflag.FlagSet, o *LogOptions) {
	fs.StringVar(&o.Format, "log-format", "text", "log format: text or json")
	fs.StringVar(&o.Level, "log-level", "info", "log level: debug, info, warn or error")
}

// BindDatabaseFlags lets flags override the database settings read from the environment.
func BindDatabaseFlags(fs *pflag.FlagSet, cfg *common.DatabaseConfig) {
	fs.StringVar(&cfg.Driver, "db-driver", cfg.Driver, "database driver: sqlite or postgres")
	fs.StringVar(&cfg.DSN, "db-url", cfg.DSN, "database DSN")
}

// NewLogger builds the process logger and installs it as the default.
// Text output drops time and level to keep terminal runs readable.
func NewLogger(w io.Writer, o LogOptions) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.Level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", o.Level)
	}
	var h slog.Handler
	switch strings.ToLower(o.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
					return slog.Attr{}
				}
				return a
			},
		})
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("invalid --log-format %q", o.Format)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger, nil
}

// PrintError prints an error message to stderr, falling back to stdout if stderr fails.
func PrintError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// Fail prints the error and returns code, for commands that unwind before exiting.
func Fail(code int, format string, args ...interface{}) int {
	PrintError(color.RedString("error: ")+format+"\n", args...)
	return code
}

// StatusColor picks the color a run status is printed in.
func StatusColor(s constants.RunStatus) *color.Color {
	switch s {
	case constants.RunStatusOK:
		return color.New(color.FgGreen, color.Bold)
	case constants.RunStatusPartial:
		return color.New(color.FgYellow, color.Bold)
	case constants.RunStatusCanceled:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgCyan, color.Bold)
	}
}

// PrintSummary writes a human-readable run summary.
func PrintSummary(w io.Writer, s pipeline.RunSummary) {
	label := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(w, "%s %s  %s %s\n", label("run"), s.RunID, label("status"), StatusColor(s.Status).Sprint(s.Status))
	fmt.Fprintf(w, "%s %d scanned, %d parsed, %d failed\n", label("files"), s.FilesScanned, s.FilesParsed, s.FilesFailed)
	fmt.Fprintf(w, "%s %d rows, %d candidates, %d duplicates\n", label("rows "), s.Rows, s.Candidates, s.Duplicates)
	fmt.Fprintf(w, "%s %s created, %s updated, %d skipped",
		label("store"),
		color.GreenString("%d", s.Created),
		color.BlueString("%d", s.Updated),
		s.Skipped)
	if s.Errors > 0 {
		fmt.Fprintf(w, ", %s", color.RedString("%d errors", s.Errors))
	}
	fmt.Fprintln(w)
	if s.LimitReached {
		color.New(color.FgYellow).Fprintln(w, "limit reached")
	}
	fmt.Fprintf(w, "%s %s\n", label("took "), s.Elapsed().Round(time.Millisecond))
}
