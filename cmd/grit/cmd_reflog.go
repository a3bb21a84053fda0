package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"grit/pkg/repo"
)

func newReflogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reflog [branch]",
		Short: "Show the update history of a branch ref",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			branch := ""
			if len(args) == 1 {
				branch = args[0]
			} else {
				branch, err = r.CurrentBranch()
				if err != nil {
					return err
				}
				if branch == "" {
					return fmt.Errorf("HEAD is detached; name a branch explicitly")
				}
			}

			entries, err := r.Reflog("refs/heads/" + branch)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			// Newest first.
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				fmt.Fprintf(out, "%s %s  %s  %s -> %s\n",
					branch,
					time.Unix(e.Timestamp, 0).Format("2006-01-02 15:04:05"),
					e.Reason,
					shortHash(string(e.OldHash)),
					shortHash(string(e.NewHash)))
			}
			return nil
		},
	}
}
