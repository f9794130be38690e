package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"disc/internal/config"
	"disc/internal/sandbox"
	"disc/internal/treeops"
)

func (a *app) mkdirCommand() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "mkdir DIR",
		Short: "Create a directory and any missing parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var perm os.FileMode
			if mode != "" {
				p, err := config.ParseMode(mode)
				if err != nil {
					return err
				}
				perm = p
			}
			d, err := a.disk.Directory(args[0])
			if err != nil {
				return err
			}
			return d.Create(perm)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "octal mode for created directories (default from config)")
	return cmd
}

func (a *app) cpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cp SRC DST",
		Short: "Copy a file or directory tree",
		Long: `Copy SRC to DST. DST must not exist. Directory trees are copied
best-effort: entries that fail are reported and the rest is kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.isDir(args[0]) {
				f, err := a.disk.File(args[0])
				if err != nil {
					return err
				}
				_, err = f.Copy(args[1])
				return err
			}

			d, err := a.disk.Directory(args[0])
			if err != nil {
				return err
			}
			_, err = d.Copy(args[1])
			var copyErr *treeops.CopyError
			if errors.As(err, &copyErr) {
				for _, f := range copyErr.Failures {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", a.out.Muted.Render("skipped"), f.Err)
				}
			}
			return err
		},
	}
}

func (a *app) mvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mv SRC DST",
		Short: "Move a file or directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.entry(args[0])
			if err != nil {
				return err
			}
			return e.Move(args[1])
		},
	}
}

func (a *app) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename PATH NAME",
		Short: "Give an entry a new name in the same directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.entry(args[0])
			if err != nil {
				return err
			}
			if err := e.Rename(args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.Path(true))
			return nil
		},
	}
}

func (a *app) rmCommand() *cobra.Command {
	var (
		recursive bool
		contents  bool
		force     bool
	)
	cmd := &cobra.Command{
		Use:   "rm PATH",
		Short: "Remove a file or directory",
		Long: `Remove PATH. Directories need -r. With --contents the directory is
emptied but kept. With -f a missing PATH is not an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.isDir(args[0]) {
				if !recursive && !contents {
					return sandbox.Wrap("remove", args[0], sandbox.ErrPermission, errors.New("is a directory, use -r"))
				}
				d, err := a.disk.Directory(args[0])
				if err != nil {
					return err
				}
				if contents {
					return d.RemoveContents(force)
				}
				return d.Remove(force)
			}

			f, err := a.disk.File(args[0])
			if err != nil {
				return err
			}
			removed, err := f.Remove()
			if err != nil {
				return err
			}
			if !removed && !force {
				return sandbox.Wrap("remove", f.Path(true), sandbox.ErrNotFound, nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove directories and their contents")
	cmd.Flags().BoolVar(&contents, "contents", false, "empty the directory but keep it")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "ignore a missing path")
	return cmd
}
