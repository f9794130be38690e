package convert

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/bytedance/sonic"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// JSON encodes v as JSON with HTML-sensitive characters escaped. Map keys
// are sorted.
func (e *Exporter) JSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if e.pretty {
		data, err = sonic.ConfigStd.MarshalIndent(v, "", "    ")
	} else {
		data, err = sonic.ConfigStd.Marshal(v)
	}
	if err != nil {
		return 0, fmt.Errorf("JSON encoding error: %w", err)
	}
	return e.save(data)
}

// YAML encodes v as YAML.
func (e *Exporter) YAML(v any) (int, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("YAML encoding error: %w", err)
	}
	return e.save(data)
}

// TOML encodes v as TOML.
func (e *Exporter) TOML(v any) (int, error) {
	data, err := toml.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("TOML encoding error: %w", err)
	}
	return e.save(data)
}

// JSON decodes the content into v.
func (i *Importer) JSON(v any) error {
	data, err := i.src.Get()
	if err != nil {
		return err
	}
	if err := sonic.ConfigStd.Unmarshal(data, v); err != nil {
		return fmt.Errorf("JSON parse error: %w", err)
	}
	return nil
}

// YAML decodes the content into v.
func (i *Importer) YAML(v any) error {
	data, err := i.src.Get()
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("YAML parse error: %w", err)
	}
	return nil
}

// TOML decodes the content into v.
func (i *Importer) TOML(v any) error {
	data, err := i.src.Get()
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("TOML parse error: %w", err)
	}
	return nil
}

// FrontMatter decodes a leading front matter block (YAML, TOML or JSON)
// into v and returns the remaining body.
func (i *Importer) FrontMatter(v any) ([]byte, error) {
	data, err := i.src.Get()
	if err != nil {
		return nil, err
	}
	body, err := frontmatter.Parse(bytes.NewReader(data), v)
	if err != nil {
		return nil, fmt.Errorf("front matter parse error: %w", err)
	}
	return body, nil
}
