// Package cli implements the patungan command-line client.
package cli

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

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mmynk/patungan/internal/config"
	"github.com/mmynk/patungan/internal/draft"
	"github.com/mmynk/patungan/internal/remote"
	"github.com/mmynk/patungan/internal/repository"
	"github.com/mmynk/patungan/internal/storage"
	"github.com/mmynk/patungan/internal/syncer"
	"github.com/mmynk/patungan/pkg/logging"
)

var errNoIdentity = errors.New("no identity set up; run 'patungan identity set --name NAME --email EMAIL'")

// options are the global flags.
type options struct {
	dir       string
	serverURL string
	offline   bool
	verbose   bool
}

// app holds the collaborators of one command invocation.
type app struct {
	profile config.Profile
	remote  *remote.Store
	repo    *repository.Repository
	sync    *syncer.Client
	out     io.Writer
	errOut  io.Writer
	closers []func()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "patungan",
		Short:         "Split bills with friends",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelError
			switch env := os.Getenv("LOG_LEVEL"); {
			case opts.verbose:
				level = slog.LevelDebug
			case env != "":
				level = logging.ParseLevel(env)
			}
			logging.SetupWith(cmd.ErrOrStderr(), level, os.Getenv("LOG_FORMAT"))
		},
	}

	root.PersistentFlags().StringVar(&opts.dir, "config-dir", config.DefaultDir(), "directory holding config.toml and drafts")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", "", "server URL (overrides the profile)")
	root.PersistentFlags().BoolVar(&opts.offline, "offline", false, "work on local drafts only")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(identityCmd(opts))
	root.AddCommand(billCmd(opts))
	root.AddCommand(notesCmd(opts))
	root.AddCommand(chatCmd(opts))
	root.AddCommand(resetCmd(opts))

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

// open loads the profile and wires the client stack.
func open(cmd *cobra.Command, opts *options) (*app, error) {
	profile, err := config.LoadProfile(opts.dir)
	if err != nil {
		return nil, err
	}

	a := &app{profile: profile, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}

	drafts, err := a.openDrafts(opts.dir)
	if err != nil {
		return nil, err
	}

	url := profile.Server.URL
	if opts.serverURL != "" {
		url = opts.serverURL
	}
	var remoteStore storage.Store
	if url != "" && !opts.offline {
		a.remote = remote.New(nil, url, profile.Identity.Name)
		remoteStore = a.remote
	}

	a.repo = repository.New(remoteStore, drafts, repository.NotifierFunc(func(msg string) {
		fmt.Fprintln(a.errOut, "!", msg)
	}))
	a.sync = syncer.NewClient(a.repo, profile.DebounceWindow())
	a.closers = append(a.closers, a.sync.Close)
	return a, nil
}

func (a *app) openDrafts(dir string) (draft.Store, error) {
	if u := a.profile.Drafts.RedisURL; u != "" {
		opt, err := redis.ParseURL(u)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(opt)
		a.closers = append(a.closers, func() { client.Close() })
		slog.Debug("Using Redis drafts", "addr", opt.Addr)
		return draft.NewRedisStore(client, a.profile.DraftTTL()), nil
	}

	draftDir := a.profile.Drafts.Dir
	if draftDir == "" {
		draftDir = config.DefaultProfile(dir).Drafts.Dir
	}
	files, err := draft.NewFileStore(draftDir)
	if err != nil {
		return nil, err
	}
	return files, nil
}

// close flushes pending writes and releases resources, newest first.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) owner() (string, error) {
	if a.profile.Identity.IsZero() {
		return "", errNoIdentity
	}
	return a.profile.Identity.Email, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// withApp wraps a command body with app setup and teardown.
func withApp(opts *options, fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := open(cmd, opts)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a, args)
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
