// Package cli is the healthctl shell: subcommands over the API client that
// render lists and dashboards as text.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/healthtrack/healthtrack/internal/client/api"
	"github.com/healthtrack/healthtrack/internal/client/authbridge"
	"github.com/healthtrack/healthtrack/internal/client/session"
)

var errNotLoggedIn = errors.New("not logged in, run: healthctl login")

type command struct {
	summary string
	authed  bool
	run     func(ctx context.Context, app *App, args []string) error
}

var commands = map[string]command{
	"register":   {summary: "create an account and log in", run: cmdRegister},
	"login":      {summary: "log in and store the session", run: cmdLogin},
	"logout":     {summary: "forget the stored session", run: cmdLogout},
	"whoami":     {summary: "show the logged-in user", run: cmdWhoami},
	"meds":       {summary: "list medications", authed: true, run: cmdMeds},
	"add-med":    {summary: "add a medication", authed: true, run: cmdAddMed},
	"edit-med":   {summary: "replace a medication: edit-med [flags] ID", authed: true, run: cmdEditMed},
	"rm-med":     {summary: "delete a medication: rm-med ID", authed: true, run: cmdRmMed},
	"metrics":    {summary: "list readings, newest first", authed: true, run: cmdMetrics},
	"add-metric": {summary: "record a reading", authed: true, run: cmdAddMetric},
	"history":    {summary: "chart series for one metric type", authed: true, run: cmdHistory},
	"dashboard":  {summary: "overview of medications and latest readings", authed: true, run: cmdDashboard},
}

type App struct {
	client *api.Client
	store  *session.Store
	bridge *authbridge.Bridge
	log    zerolog.Logger

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	loc    *time.Location

	readPassword func() ([]byte, error)
}

type Option func(*App)

func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in, a.out, a.errOut = bufio.NewReader(in), out, errOut
	}
}

// WithPasswordReader replaces the terminal password prompt.
func WithPasswordReader(fn func() ([]byte, error)) Option {
	return func(a *App) { a.readPassword = fn }
}

func WithLocation(loc *time.Location) Option {
	return func(a *App) { a.loc = loc }
}

func WithLogger(log zerolog.Logger) Option {
	return func(a *App) { a.log = log }
}

// New builds the shell. The client must have been created with
// api.WithUnauthorizedHandler(bridge.Signal); New registers the logout
// handler on bridge.
func New(client *api.Client, store *session.Store, bridge *authbridge.Bridge, logoutDelay time.Duration, opts ...Option) *App {
	a := &App{
		client: client,
		store:  store,
		bridge: bridge,
		log:    zerolog.Nop(),
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		errOut: os.Stderr,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.readPassword == nil {
		a.readPassword = func() ([]byte, error) { return terminalPassword(a.out) }
	}

	bridge.SetHandler(authbridge.LogoutHandler(store, logoutDelay,
		func() { fmt.Fprintln(a.errOut, "Session expired. Log in again with: healthctl login") },
		func(err error) { a.log.Warn().Err(err).Msg("clearing session failed") },
	))
	return a
}

// Run executes one subcommand and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.errOut, "unknown command %q\n", args[0])
		a.usage()
		return 2
	}

	err := a.exec(ctx, cmd, args[1:])
	// Let the logout handler finish before the process exits.
	a.bridge.Wait()
	if err != nil {
		fmt.Fprintln(a.errOut, "error:", err)
		return 1
	}
	return 0
}

func (a *App) exec(ctx context.Context, cmd command, args []string) error {
	if cmd.authed && !a.store.IsAuthenticated(ctx) {
		return errNotLoggedIn
	}
	return cmd.run(ctx, a, args)
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.errOut, "usage: healthctl <command> [flags]")
	fmt.Fprintln(a.errOut)
	for _, name := range names {
		fmt.Fprintf(a.errOut, "  %-11s %s\n", name, commands[name].summary)
	}
}
