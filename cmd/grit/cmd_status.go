package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"grit/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			entries, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			branch := currentBranchName(r)
			headHash, err := r.ResolveRef("HEAD")
			if err != nil || headHash == "" {
				fmt.Fprintf(out, "on %s (no commits yet)\n", branch)
			} else {
				fmt.Fprintf(out, "on %s\n", branch)
			}

			var staged, unstaged, untracked []string

			for _, e := range entries {
				switch e.IndexStatus {
				case repo.StatusNew:
					staged = append(staged, fmt.Sprintf("  + %s", e.Path))
				case repo.StatusModified:
					staged = append(staged, fmt.Sprintf("  ~ %s", e.Path))
				case repo.StatusDeleted:
					staged = append(staged, fmt.Sprintf("  - %s", e.Path))
				case repo.StatusUntracked:
					untracked = append(untracked, fmt.Sprintf("  %s", e.Path))
				}

				switch e.WorkStatus {
				case repo.StatusDirty:
					unstaged = append(unstaged, fmt.Sprintf("  ~ %s", e.Path))
				case repo.StatusDeleted:
					unstaged = append(unstaged, fmt.Sprintf("  - %s", e.Path))
				}
			}

			if len(staged) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "staged:")
				green := color.New(color.FgGreen)
				for _, s := range staged {
					green.Fprintln(out, s)
				}
			}

			if len(unstaged) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "unstaged:")
				red := color.New(color.FgRed)
				for _, s := range unstaged {
					red.Fprintln(out, s)
				}
			}

			if len(untracked) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "untracked:")
				red := color.New(color.FgRed)
				for _, s := range untracked {
					red.Fprintln(out, s)
				}
			}

			if len(staged) == 0 && len(unstaged) == 0 && len(untracked) == 0 {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
			}

			return nil
		},
	}
}
