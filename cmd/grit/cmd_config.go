package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grit/pkg/repo"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config <key> [value]",
		Short: "Get or set repository configuration",
		Long:  "Supported keys: user.name, user.email, core.default_branch",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			cfg, err := r.ReadConfig()
			if err != nil {
				return err
			}

			key := args[0]

			if len(args) == 1 {
				val, err := configGet(cfg, key)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), val)
				return nil
			}

			if err := configSet(cfg, key, args[1]); err != nil {
				return err
			}
			return r.WriteConfig(cfg)
		},
	}
}

func configGet(cfg *repo.Config, key string) (string, error) {
	switch key {
	case "user.name":
		return cfg.User.Name, nil
	case "user.email":
		return cfg.User.Email, nil
	case "core.default_branch":
		return cfg.Core.DefaultBranch, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

func configSet(cfg *repo.Config, key, value string) error {
	switch key {
	case "user.name":
		cfg.User.Name = value
	case "user.email":
		cfg.User.Email = value
	case "core.default_branch":
		cfg.Core.DefaultBranch = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
