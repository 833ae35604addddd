package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/euronode/euronode/internal/buildinfo"
	"github.com/euronode/euronode/internal/client/config"
	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/views"
)

// newAppFn is a test seam for building the App once flags are parsed.
var newAppFn = NewApp

// Root greets the user, sends them to the login prompt when no session is
// stored (or shows the dashboard when one is), and runs the REPL.
func (a *App) Root(ctx context.Context) error {
	buildinfo.PrintBuildData(a.out)
	a.println("Welcome to euronode (type 'help' for commands)")

	p := printer{w: a.out}
	if a.isLoggedIn(ctx) {
		p.report(a.Dashboard(ctx))
	} else {
		p.report(a.Login(ctx))
	}

	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader, a.out)
	return nil
}

// commandEnv carries the parsed flags and the App between cobra hooks.
type commandEnv struct {
	flags config.Flags
	app   *App
}

func (e *commandEnv) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(&e.flags)
	if err != nil {
		return err
	}
	e.app, err = newAppFn(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	return err
}

func (e *commandEnv) close() error {
	if e.app == nil {
		return nil
	}
	err := e.app.Close()
	e.app = nil
	return err
}

// run adapts an App method to a cobra RunE.
func (e *commandEnv) run(fn func(a *App, ctx context.Context) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return fn(e.app, cmd.Context())
	}
}

// NewRootCmd builds the command tree. Without a subcommand the REPL starts.
func NewRootCmd() (*cobra.Command, func() error) {
	env := &commandEnv{}

	root := &cobra.Command{
		Use:               "euronode",
		Short:             "Terminal client for the euronode federated-learning coordinator",
		Version:           buildinfo.String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: env.setup,
		RunE:              env.run((*App).Root),
	}
	root.CompletionOptions.DisableDefaultCmd = true
	env.flags.Register(root.PersistentFlags())

	root.AddCommand(
		newLoginCmd(env),
		newRegisterCmd(env),
		&cobra.Command{Use: "logout", Short: "Forget the stored session", Args: cobra.NoArgs, RunE: env.run((*App).Logout)},
		&cobra.Command{Use: "whoami", Short: "Show the stored session", Args: cobra.NoArgs, RunE: env.run((*App).Whoami)},
		&cobra.Command{Use: "dashboard", Short: "Show the dashboard for your role", Args: cobra.NoArgs, RunE: env.run((*App).Dashboard)},
		newIterationsCmd(env),
		newClientsCmd(env),
		newAssignCmd(env),
		&cobra.Command{Use: "assignments", Short: "List the clients you assigned", Args: cobra.NoArgs, RunE: env.run((*App).Assignments)},
		&cobra.Command{Use: "assign-ui", Short: "Search and assign clients interactively", Args: cobra.NoArgs, RunE: env.run((*App).AssignUI)},
	)
	return root, env.close
}

func newLoginCmd(env *commandEnv) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: env.run(func(a *App, ctx context.Context) error {
			return a.login(ctx, email)
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")
	return cmd
}

func newRegisterCmd(env *commandEnv) *cobra.Command {
	var reg models.Registration
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: env.run(func(a *App, ctx context.Context) error {
			reg.Role = models.Role(role)
			return a.register(ctx, reg)
		}),
	}
	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&reg.Hospital, "hospital", "", "hospital name")
	cmd.Flags().StringVar(&role, "role", "", "central or client")
	return cmd
}

func newIterationsCmd(env *commandEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "iterations",
		Aliases: []string{"it"},
		Short:   "Show the final model and running iterations",
		Args:    cobra.NoArgs,
		RunE:    env.run((*App).Iterations),
	}

	var in iterationInput
	start := &cobra.Command{
		Use:   "start",
		Short: "Upload a model file as a new iteration",
		Args:  cobra.NoArgs,
		RunE: env.run(func(a *App, ctx context.Context) error {
			return a.startIteration(ctx, in)
		}),
	}
	start.Flags().StringVar(&in.Name, "name", "", "model name")
	start.Flags().StringVar(&in.Domain, "domain", "", "dataset domain")
	start.Flags().IntVar(&in.Version, "version", views.DefaultVersion, "iteration version, 0 marks the final model")
	start.Flags().StringVarP(&in.File, "file", "f", "", "model file (.pkl)")

	pull := &cobra.Command{
		Use:   "pull <id>",
		Short: "Download the model file of a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			return env.app.Pull(cmd.Context(), id)
		},
	}

	cmd.AddCommand(
		&cobra.Command{Use: "list", Short: "Same as iterations", Args: cobra.NoArgs, RunE: env.run((*App).Iterations)},
		start,
		&cobra.Command{Use: "running", Short: "Running iterations as reported by the server", Args: cobra.NoArgs, RunE: env.run((*App).Running)},
		&cobra.Command{Use: "history", Short: "Every model version, newest first", Args: cobra.NoArgs, RunE: env.run((*App).History)},
		pull,
	)
	return cmd
}

func newClientsCmd(env *commandEnv) *cobra.Command {
	cmd := &cobra.Command{Use: "clients", Short: "Client directory"}
	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Find unassigned clients by email or hospital",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.app.Search(cmd.Context(), args[0])
		},
	})
	return cmd
}

func newAssignCmd(env *commandEnv) *cobra.Command {
	var email, domain, model string
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign a client to a model and data domain",
		Args:  cobra.NoArgs,
		RunE: env.run(func(a *App, ctx context.Context) error {
			return a.Assign(ctx, email, domain, model)
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "client email")
	cmd.Flags().StringVar(&domain, "domain", "", "data domain")
	cmd.Flags().StringVar(&model, "model", "", "model name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root, closeApp := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if cerr := closeApp(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil {
		return 0
	}
	if msg := describe(err); msg != "" {
		fmt.Fprintln(errOut, "Error:", msg)
	}
	return 1
}
