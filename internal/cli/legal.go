package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"academy/internal/cli/colours"
	"academy/internal/legal"
)

func legalCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "legal <" + strings.Join(legal.Names(), "|") + ">",
		Short:     "📜 Print the terms of service or the privacy policy",
		Args:      cobra.ExactArgs(1),
		ValidArgs: legal.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := legal.Lookup(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			colours.Title.Fprintln(w, doc.Title)
			fmt.Fprintln(w)
			fmt.Fprint(w, doc.Body)
			return nil
		},
	}
}
