package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"disc/internal/display"
	"disc/internal/entry"
	"disc/internal/sandbox"
)

func (a *app) resolveCommand() *cobra.Command {
	var absolute bool
	cmd := &cobra.Command{
		Use:   "resolve PATH",
		Short: "Print where PATH resolves inside the root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.sandbox().ResolveString(args[0], !absolute, sandbox.KindAny)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&absolute, "absolute", "a", false, "print the absolute path instead of the root-relative one")
	return cmd
}

func (a *app) lsCommand() *cobra.Command {
	var (
		recursive bool
		pattern   string
	)
	cmd := &cobra.Command{
		Use:   "ls [DIR]",
		Short: "List directory entries matching a pattern",
		Long: `List the entries of DIR (the root by default) whose names match the
glob PATTERN. With -r subdirectories are searched too, level by level.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "/"
			if len(args) == 1 {
				dir = args[0]
			}
			d, err := a.disk.Directory(dir)
			if err != nil {
				return err
			}
			paths, err := d.List(pattern, recursive)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "*", "glob pattern matched against entry names")
	return cmd
}

func (a *app) infoCommand() *cobra.Command {
	var (
		format string
		layout string
		field  string
	)
	cmd := &cobra.Command{
		Use:   "info PATH",
		Short: "Show metadata for a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := a.entry(args[0])
			if err != nil {
				return err
			}
			info, err := target.Info(layout)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if field != "" {
				v, err := info.Lookup(field)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, v)
				return nil
			}

			switch strings.ToLower(format) {
			case "json":
				b, err := sonic.ConfigStd.MarshalIndent(info, "", "    ")
				if err != nil {
					return fmt.Errorf("failed to encode info: %w", err)
				}
				fmt.Fprintln(out, string(b))
			case "yaml":
				b, err := yaml.Marshal(info)
				if err != nil {
					return fmt.Errorf("failed to encode info: %w", err)
				}
				fmt.Fprint(out, string(b))
			case "", "table":
				a.printInfo(out, info)
			default:
				return fmt.Errorf("unknown format %q: want table, json or yaml", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	cmd.Flags().StringVar(&layout, "time-layout", display.DefaultTimeLayout, "Go time layout for the displayed times")
	cmd.Flags().StringVar(&field, "field", "", "print a single field, e.g. size_display or mtime")
	return cmd
}

func (a *app) printInfo(w io.Writer, info display.Info) {
	rows := [][2]string{
		{"path", info.Path},
		{"type", info.Type},
		{"mime", info.MIMEType},
		{"size", fmt.Sprintf("%s (%d bytes)", info.SizeDisplay, info.Size)},
		{"permissions", info.PermissionsDisplay},
		{"owner", fmt.Sprintf("%s (%d)", info.UidDisplay, info.Uid)},
		{"group", fmt.Sprintf("%s (%d)", info.GidDisplay, info.Gid)},
		{"accessed", info.AtimeDisplay},
		{"modified", info.MtimeDisplay},
		{"changed", info.CtimeDisplay},
		{"readable", fmt.Sprint(info.IsReadable)},
		{"writable", fmt.Sprint(info.IsWritable)},
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}

	fmt.Fprintln(w, a.out.Title.Render(info.Basename))
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		pad := strings.Repeat(" ", width-len(r[0])+2)
		fmt.Fprintln(w, a.out.Key.Render(r[0])+pad+a.out.Value.Render(r[1]))
	}
}

// isDir reports whether logical names an existing directory.
func (a *app) isDir(logical string) bool {
	_, err := a.sandbox().Resolve(logical, sandbox.KindDirectory)
	return err == nil
}

// entry returns a directory handle when logical is a directory and a file
// handle otherwise.
func (a *app) entry(logical string) (*entry.Entry, error) {
	if a.isDir(logical) {
		d, err := a.disk.Directory(logical)
		if err != nil {
			return nil, err
		}
		return &d.Entry, nil
	}
	f, err := a.disk.File(logical)
	if err != nil {
		return nil, err
	}
	return &f.Entry, nil
}
