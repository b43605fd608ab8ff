// Package cli is the academy command tree. Each invocation is one
// session: the catalog is loaded, the command runs, every change is
// already saved when it returns.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"academy/internal/cli/colours"
	"academy/internal/config"
	"academy/internal/logging"
)

const msgBadLogin = "아이디 또는 비밀번호가 일치하지 않습니다."

type globalFlags struct {
	configPath    string
	logLevel      string
	adminID       string
	adminPassword string
}

// runner owns the lazily opened session shared by the commands of one
// invocation.
type runner struct {
	flags globalFlags
	env   *Env
	log   *logrus.Logger
}

// Streams are the terminal a command talks to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Execute runs the academy CLI with args.
func Execute(ctx context.Context, args []string, s Streams) error {
	r := &runner{}
	root := r.rootCmd()
	root.SetArgs(args)
	root.SetIn(s.In)
	root.SetOut(s.Out)
	root.SetErr(s.Err)

	err := root.ExecuteContext(ctx)
	if r.env != nil {
		if cerr := r.env.Close(); cerr != nil {
			r.log.WithError(cerr).Warn("shutdown")
		}
	}
	return err
}

func (r *runner) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "academy",
		Short: "📚 Course catalog manager",
		Long: `
academy keeps the course catalog on this machine, lets an admin edit it
and publishes it to a file in a GitHub repository.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&r.flags.configPath, "config", "", "config file (default $HOME/.academy/academy.yaml)")
	pf.StringVar(&r.flags.logLevel, "log-level", "", "override log_level")
	pf.StringVar(&r.flags.adminID, "admin-id", "", "admin id, for admin commands")
	pf.StringVar(&r.flags.adminPassword, "admin-password", "", "admin password, for admin commands")

	root.AddCommand(
		r.catalogCmd(),
		r.courseCmd(),
		r.lessonCmd(),
		r.previewCmd(),
		r.progressCmd(),
		r.settingsCmd(),
		r.publishCmd(),
		r.tutorCmd(),
		r.consultCmd(),
		legalCmd(),
	)
	return root
}

// session opens the environment on first use.
func (r *runner) session(cmd *cobra.Command) (*Env, error) {
	if r.env != nil {
		return r.env, nil
	}
	cfg, err := config.Load(r.flags.configPath)
	if err != nil {
		return nil, err
	}
	if r.flags.logLevel != "" {
		cfg.LogLevel = r.flags.logLevel
	}
	r.log = logging.NewWithOutput(cfg.LogLevel, cmd.ErrOrStderr())

	env, err := Open(cmd.Context(), cfg, r.log)
	if err != nil {
		return nil, err
	}
	r.env = env
	return env, nil
}

// admin opens the session and logs in with the admin flags.
func (r *runner) admin(cmd *cobra.Command) (*Env, error) {
	env, err := r.session(cmd)
	if err != nil {
		return nil, err
	}
	if r.flags.adminID == "" && r.flags.adminPassword == "" {
		return nil, errors.New("admin login required: pass --admin-id and --admin-password")
	}
	if !env.Ctrl.Session().Login(r.flags.adminID, r.flags.adminPassword) {
		return nil, errors.New(msgBadLogin)
	}
	return env, nil
}

func success(cmd *cobra.Command, format string, a ...any) {
	colours.Success.Fprintf(cmd.OutOrStdout(), "✅ "+format+"\n", a...)
}

func warn(cmd *cobra.Command, msg string) {
	colours.Warning.Fprintf(cmd.ErrOrStderr(), "⚠️  %s\n", msg)
}

func fprintf(cmd *cobra.Command, format string, a ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}
