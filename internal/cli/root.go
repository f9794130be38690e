// Package cli implements the disc command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"disc/internal/config"
	"disc/internal/entry"
	"disc/internal/logging"
	"disc/internal/sandbox"
)

var version = "dev"

// app carries the state shared by every command of one invocation.
type app struct {
	rootFlag   string
	configFlag string
	noColor    bool

	cfg  *config.Config
	disk *entry.Disk
	out  styles
}

func (a *app) sandbox() *sandbox.Sandbox { return a.disk.Sandbox() }

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{}
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		st := newStyles(newRenderer(stderr, a.noColor))
		fmt.Fprintln(stderr, st.Error.Render("error:"), err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "disc",
		Short: "Work with files confined to a sandbox root",
		Long: `disc reads and writes files below a single root directory. Every path
is resolved against the root and rejected if it would escape it, including
through symbolic links.

The root comes from --root, then DISC_ROOT, then the config file written by
'disc init'.

Common workflows:
  disc init ~/sandbox          Create the root and write the config file
  echo hi | disc save a/b.txt  Atomically write stdin to a file
  disc ls -r -p '*.txt'        List matching files below the root
  disc cp docs backup/docs     Copy a directory tree`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVar(&a.rootFlag, "root", "", "sandbox root directory (overrides config and DISC_ROOT)")
	flags.StringVar(&a.configFlag, "config", "", "config file path")
	flags.BoolVar(&a.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		a.initCommand(),
		a.versionCommand(),
		a.resolveCommand(),
		a.lsCommand(),
		a.infoCommand(),
		a.catCommand(),
		a.saveCommand(),
		a.touchCommand(),
		a.mkdirCommand(),
		a.cpCommand(),
		a.mvCommand(),
		a.renameCommand(),
		a.rmCommand(),
		a.convertCommand(),
	)
	return root
}

// noSandbox marks commands that run before a root exists.
const noSandbox = "disc/no-sandbox"

// setup loads the configuration, installs the logger and opens the sandbox.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.out = newStyles(newRenderer(cmd.OutOrStdout(), a.noColor))

	_, skip := cmd.Annotations[noSandbox]
	skip = skip || cmd.Name() == "help"
	cfg, err := a.loadConfig(skip)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logging.SetDefault(logging.NewLeveledLogger(cmd.ErrOrStderr(), cfg.LogLevel).With("cmd", cmd.Name()))

	if skip {
		return nil
	}

	sb, err := sandbox.New(cfg.Root)
	if err != nil {
		if errors.Is(err, sandbox.ErrConfig) && a.rootFlag == "" {
			if a.configFlag == "" && config.IsFirstRun() {
				return fmt.Errorf("%w (run 'disc init' or pass --root)", err)
			}
			return fmt.Errorf("%w (run 'disc init ROOT' to choose another root or pass --root)", err)
		}
		return err
	}
	dirMode, _ := cfg.DirPerm()
	fileMode, _ := cfg.FilePerm()
	sb.SetDirMode(dirMode)

	a.disk = entry.New(sb)
	a.disk.SetFileMode(fileMode)
	return nil
}

// loadConfig reads the config file if there is one, then applies the
// environment and the --root flag on top. A --config file that does not
// exist is an error unless allowMissing is set.
func (a *app) loadConfig(allowMissing bool) (*config.Config, error) {
	path, exists := config.FindConfigFile()
	if a.configFlag != "" {
		path = a.configFlag
		_, err := os.Stat(path)
		exists = err == nil
		if !exists && !allowMissing {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	var cfg *config.Config
	if exists {
		loaded, err := config.LoadFrom(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		def := config.DefaultConfig()
		cfg = &def
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if a.rootFlag != "" {
		cfg.Root = a.rootFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Displays the application version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noSandbox: ""},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "disc %s\n", version)
		},
	}
}

func (a *app) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "init [ROOT]",
		Short:       "Create the sandbox root and write the config file",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{noSandbox: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := a.rootFlag
			if len(args) == 1 {
				root = args[0]
			}
			if root == "" {
				root = a.cfg.Root
			}

			path := a.configFlag
			if path == "" {
				path, _ = config.FindConfigFile()
			}

			// An existing config keeps its other settings.
			if _, err := os.Stat(path); err == nil {
				cfg, err := config.LoadFrom(path)
				if err != nil {
					return err
				}
				if err := cfg.SetRoot(root); err != nil {
					return err
				}
				if err := cfg.SaveTo(path); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.out.Success.Render("Updated"), cfg.Root)
				fmt.Fprintln(cmd.OutOrStdout(), a.out.Muted.Render("config: "+path))
				return nil
			}

			cfg, err := config.CreateNewConfig(root, path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.out.Success.Render("Initialized"), cfg.Root)
			fmt.Fprintln(cmd.OutOrStdout(), a.out.Muted.Render("config: "+path))
			return nil
		},
	}
}
