// Copyright © 2024 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luthersystems/tslint/config"
)

// InitCommand creates the "init" cobra command.
func InitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:           "init [DIR]",
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "Write a default tslint.json",
		Long: `Write the default configuration to tslint.json in DIR, or in the
current directory when DIR is omitted. An existing file is left alone
unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := writeDefaultConfig(dir, force)
			if err != nil {
				return badInvocation(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing tslint.json.")
	return cmd
}

func writeDefaultConfig(dir string, force bool) (string, error) {
	path := filepath.Join(dir, config.FileNames[0])
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644) //nolint:gosec // config files are world readable
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(config.DefaultFile); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

func init() {
	rootCmd.AddCommand(InitCommand())
}
