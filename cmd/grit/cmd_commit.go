package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"grit/pkg/repo"
)

func newCommitCmd() *cobra.Command {
	var message string
	var author string
	var sign bool
	var signKey string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the staged snapshot as a new commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if author == "" {
				cfg, err := r.ReadConfig()
				if err != nil {
					return err
				}
				author = cfg.Author()
			}

			var signer repo.CommitSigner
			if sign || signKey != "" {
				s, keyPath, err := newSSHCommitSigner(signKey)
				if err != nil {
					return err
				}
				signer = s
				fmt.Fprintf(cmd.OutOrStdout(), "signing with %s\n", keyPath)
			}

			h, err := r.CommitWithSigner(message, author, time.Now(), signer)
			if err != nil {
				if errors.Is(err, repo.ErrNothingToCommit) {
					return fmt.Errorf("nothing to commit, working tree matches %s", currentBranchName(r))
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", currentBranchName(r), shortHash(string(h)), message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "override author (default: configured identity)")
	cmd.Flags().BoolVar(&sign, "sign", false, "sign the commit with the default SSH key")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "sign the commit with the given SSH private key")

	return cmd
}

func currentBranchName(r *repo.Repo) string {
	branch, err := r.CurrentBranch()
	if err != nil || branch == "" {
		return "HEAD"
	}
	return branch
}
