package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"grit/pkg/object"
	"grit/pkg/repo"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <branch-or-commit> <branch-or-commit>",
		Short: "Show paths that differ between two commits",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			a, err := resolveTarget(r, args[0])
			if err != nil {
				return err
			}
			b, err := resolveTarget(r, args[1])
			if err != nil {
				return err
			}

			changes, err := r.DiffCommits(a, b)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			green := color.New(color.FgGreen)
			red := color.New(color.FgRed)
			yellow := color.New(color.FgYellow)

			for _, c := range changes {
				switch c.Kind {
				case repo.ChangeAdded:
					green.Fprintf(out, "added:    %s\n", c.Path)
				case repo.ChangeRemoved:
					red.Fprintf(out, "removed:  %s\n", c.Path)
				case repo.ChangeModified:
					yellow.Fprintf(out, "modified: %s\n", c.Path)
				}
			}
			return nil
		},
	}
}

// resolveTarget resolves a branch name or raw commit hash.
func resolveTarget(r *repo.Repo, target string) (object.Hash, error) {
	h, err := r.ResolveRef(target)
	if err == nil {
		return h, nil
	}
	if r.Store.Has(object.Hash(target)) {
		return object.Hash(target), nil
	}
	return "", fmt.Errorf("unknown branch or commit %q", target)
}
