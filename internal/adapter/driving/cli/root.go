// Package cli is the command-line driving adapter.
package cli

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/classfeed/internal/application"
)

// App carries the services and I/O streams the commands run against.
type App struct {
	Session    *application.SessionService
	Feed       *application.FeedService
	Classmates *application.ClassmateService

	// Serve runs the local HTTP API until ctx is cancelled.
	Serve func(ctx context.Context) error

	// LogLevel is raised to Debug by --verbose. May be nil.
	LogLevel *slog.LevelVar

	In  io.Reader
	Out io.Writer
	Err io.Writer

	reader *bufio.Reader
}

// NewRootCmd builds the classfeed command tree.
func NewRootCmd(app *App) *cobra.Command {
	if app.In == nil {
		app.In = os.Stdin
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Err == nil {
		app.Err = os.Stderr
	}

	var verbose bool

	root := &cobra.Command{
		Use:           "classfeed",
		Short:         "Classroom feed client",
		Long:          "classfeed signs in to the classroom service, lists classmates and reads and writes the class feed.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if verbose && app.LogLevel != nil {
				app.LogLevel.Set(slog.LevelDebug)
			}
		},
	}
	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.SetErr(app.Err)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newClassmatesCmd(app),
		newFeedCmd(app),
		newPostCmd(app),
		newLikeCmd(app),
		newCommentCmd(app),
		newRmPostCmd(app),
		newRmCommentCmd(app),
		newServeCmd(app),
	)

	return root
}

// Execute runs the command tree and reports a failure on the error stream.
// It returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCmd(app)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		printError(app.Err, err)
		return 1
	}
	return 0
}

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Serve(cmd.Context())
		},
	}
}
