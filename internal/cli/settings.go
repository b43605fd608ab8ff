package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"academy/internal/cli/colours"
	"academy/internal/publish"
	"academy/internal/store"
)

func (r *runner) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "⚙️ Show or change the publish target (admin)",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored publish target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			t, err := env.Ctrl.PublishTarget(cmd.Context())
			if err != nil {
				return err
			}
			gh := env.Config.GitHub
			format := publish.Format(gh.Format)
			path := t.Path
			if path == "" {
				path = publish.DefaultPath(format) + " (default)"
			}

			w := cmd.OutOrStdout()
			colours.Title.Fprintln(w, "GitHub 연동 설정")
			row := func(k, v string) {
				colours.Label.Fprintf(w, "  %-8s", k)
				if v == "" {
					colours.Muted.Fprintln(w, " (not set)")
					return
				}
				fprintf(cmd, " %s\n", v)
			}
			row("token", maskToken(t.Token))
			row("repo", t.Repo)
			row("path", path)
			row("branch", gh.Branch)
			row("format", string(format))
			return nil
		},
	}

	var t store.PublishTarget
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change the stored publish target; unset flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := r.admin(cmd)
			if err != nil {
				return err
			}
			cur, err := env.Ctrl.PublishTarget(cmd.Context())
			if err != nil {
				return err
			}
			next := overlay(cur, t)
			if err := env.Ctrl.SavePublishTarget(cmd.Context(), next); err != nil {
				return err
			}
			success(cmd, "publish target saved (%s/%s)", next.Repo, next.Path)
			return nil
		},
	}
	targetFlags(setCmd, &t)

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}

func targetFlags(cmd *cobra.Command, t *store.PublishTarget) {
	f := cmd.Flags()
	f.StringVar(&t.Token, "token", "", "GitHub personal access token")
	f.StringVar(&t.Repo, "repo", "", "owner/repo")
	f.StringVar(&t.Path, "path", "", "file path inside the repo, e.g. data/mockData.ts")
}

// overlay replaces the fields of base that o sets.
func overlay(base, o store.PublishTarget) store.PublishTarget {
	if v := strings.TrimSpace(o.Token); v != "" {
		base.Token = v
	}
	if v := strings.TrimSpace(o.Repo); v != "" {
		base.Repo = v
	}
	if v := strings.TrimSpace(o.Path); v != "" {
		base.Path = v
	}
	return base
}

func maskToken(tok string) string {
	if tok == "" {
		return ""
	}
	if len(tok) <= 8 {
		return strings.Repeat("•", len(tok))
	}
	return tok[:4] + strings.Repeat("•", 8) + tok[len(tok)-4:]
}
