package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (a *app) catCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat FILE",
		Short: "Write a file's content to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.disk.File(args[0])
			if err != nil {
				return err
			}
			_, err = f.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

func (a *app) saveCommand() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "save FILE",
		Short: "Atomically replace a file with stdin",
		Long: `Read stdin to the end and write it to FILE through a temporary file that
is renamed into place, so readers see either the old or the new content.
Missing parent directories are created.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			f, err := a.disk.File(args[0])
			if err != nil {
				return err
			}
			n, err := f.Save(content)
			if err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d bytes to %s\n", a.out.Success.Render("Saved"), n, f.Path(true))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not report the byte count")
	return cmd
}

func (a *app) touchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "touch PATH",
		Short: "Create a file or update its timestamps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.entry(args[0])
			if err != nil {
				return err
			}
			return e.Touch()
		},
	}
}
