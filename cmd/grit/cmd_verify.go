package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grit/pkg/object"
	"grit/pkg/repo"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify object store integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			report, err := r.Store.Verify()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: verified %d object(s)\n", report.LooseObjects)
			return nil
		},
	}
}

func newVerifyCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-commit <commit>",
		Short: "Verify the SSH signature on a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			h, err := resolveTarget(r, args[0])
			if err != nil {
				return err
			}

			commit, err := r.Store.ReadCommit(h)
			if err != nil {
				return err
			}
			if commit.Signature == "" {
				return fmt.Errorf("commit %s is not signed", shortHash(string(h)))
			}

			fingerprint, err := verifyCommitSignature(commit, object.CommitSigningPayload(commit))
			if err != nil {
				return fmt.Errorf("commit %s: %w", shortHash(string(h)), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "good signature on %s (key %s)\n", shortHash(string(h)), fingerprint)
			return nil
		},
	}
}
