package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"disc/internal/config"
	"disc/internal/convert"
)

// formatOf maps a file extension onto a converter format name.
func formatOf(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	case ".ini":
		return "ini", nil
	case ".md", ".markdown":
		return "markdown", nil
	default:
		return "", fmt.Errorf("unsupported format %q", ext)
	}
}

func (a *app) convertCommand() *cobra.Command {
	var (
		pretty bool
		mode   string
	)
	cmd := &cobra.Command{
		Use:   "convert SRC DST",
		Short: "Convert structured data between JSON, YAML, TOML and INI",
		Long: `Read SRC and write its data to DST in the format named by DST's
extension (.json, .yaml, .yml, .toml, .ini). A markdown SRC contributes its
front matter. DST is saved atomically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcFormat, err := formatOf(args[0])
			if err != nil {
				return err
			}
			dstFormat, err := formatOf(args[1])
			if err != nil {
				return err
			}

			src, err := a.disk.File(args[0])
			if err != nil {
				return err
			}
			data, err := importData(convert.NewImporter(src), srcFormat)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", src.Path(true), err)
			}

			dst, err := a.disk.File(args[1])
			if err != nil {
				return err
			}
			var opts []convert.Option
			if pretty {
				opts = append(opts, convert.WithPretty())
			}
			if mode != "" {
				perm, err := config.ParseMode(mode)
				if err != nil {
					return err
				}
				opts = append(opts, convert.WithMode(perm))
			}

			n, err := exportData(convert.NewExporter(dst, opts...), dstFormat, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d bytes to %s\n", a.out.Success.Render("Wrote"), n, dst.Path(true))
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "octal mode applied to DST after writing")
	return cmd
}

func importData(in *convert.Importer, format string) (map[string]any, error) {
	data := map[string]any{}
	var err error
	switch format {
	case "json":
		err = in.JSON(&data)
	case "yaml":
		err = in.YAML(&data)
	case "toml":
		err = in.TOML(&data)
	case "ini":
		data, err = in.INI()
	case "markdown":
		_, err = in.FrontMatter(&data)
	}
	if err != nil {
		return nil, err
	}
	return normalize(data).(map[string]any), nil
}

// normalize turns the map[any]any values some YAML decoders produce into
// map[string]any, which every exporter accepts.
func normalize(v any) any {
	switch v := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]any:
		for k, val := range v {
			v[k] = normalize(val)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = normalize(val)
		}
		return v
	}
	return v
}

func exportData(out *convert.Exporter, format string, data map[string]any) (int, error) {
	switch format {
	case "json":
		return out.JSON(data)
	case "yaml":
		return out.YAML(data)
	case "toml":
		return out.TOML(data)
	case "ini":
		return out.INI(data)
	default:
		return 0, fmt.Errorf("cannot write %s output", format)
	}
}
