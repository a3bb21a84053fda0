package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"grit/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			headHash, err := r.ResolveRef("HEAD")
			if err != nil {
				if errors.Is(err, repo.ErrUnknownBranch) {
					fmt.Fprintln(cmd.OutOrStdout(), "no commits yet")
					return nil
				}
				return fmt.Errorf("cannot resolve HEAD: %w", err)
			}
			if headHash == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no commits yet")
				return nil
			}

			entries, err := r.Log(headHash, limit)
			if err != nil {
				return err
			}

			branch, _ := r.CurrentBranch()
			out := cmd.OutOrStdout()
			yellow := color.New(color.FgYellow)

			for _, entry := range entries {
				decoration := ""
				if entry.Hash == headHash {
					if branch != "" {
						decoration = " (HEAD -> " + branch + ")"
					} else {
						decoration = " (HEAD)"
					}
				}

				if oneline {
					yellow.Fprint(out, shortHash(string(entry.Hash)))
					fmt.Fprintf(out, "%s %s\n", decoration, entry.Commit.Message)
					continue
				}

				yellow.Fprintf(out, "commit %s", entry.Hash)
				fmt.Fprintln(out, decoration)
				fmt.Fprintf(out, "Author: %s\n", entry.Commit.Author)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(entry.Commit.Timestamp, 0).Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", entry.Commit.Message)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "compact one-line format")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of commits to show")

	return cmd
}
