package convert

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// INI encodes data as INI. Nested maps become sections named by their dotted
// key path, for example [database.primary]. At every level plain keys are
// written before subsections and keys are sorted.
func (e *Exporter) INI(data map[string]any) (int, error) {
	var buf bytes.Buffer
	writeINI(&buf, data, nil)
	return e.save(buf.Bytes())
}

func writeINI(buf *bytes.Buffer, data map[string]any, parent []string) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sections []string
	for _, k := range keys {
		if _, ok := data[k].(map[string]any); ok {
			sections = append(sections, k)
			continue
		}
		fmt.Fprintf(buf, "%s=%s\n", k, iniValue(data[k]))
	}
	for _, k := range sections {
		path := append(append([]string(nil), parent...), k)
		fmt.Fprintf(buf, "[%s]\n", strings.Join(path, "."))
		writeINI(buf, data[k].(map[string]any), path)
	}
}

func iniValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		if strings.ContainsAny(v, ";#=\"\n") || strings.TrimSpace(v) != v {
			return strconv.Quote(v)
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}

// INI decodes INI content into nested maps, the inverse of Exporter.INI.
// Integer, float and boolean values are converted; everything else stays a
// string. Lines starting with ';' or '#' are comments.
func (i *Importer) INI() (map[string]any, error) {
	data, err := i.src.Get()
	if err != nil {
		return nil, err
	}
	return ParseINI(data)
}

// ParseINI decodes INI content. See Importer.INI.
func ParseINI(data []byte) (map[string]any, error) {
	result := map[string]any{}
	current := result

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}

		if line[0] == '[' {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("INI parse error: line %d: unterminated section", lineNo)
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return nil, fmt.Errorf("INI parse error: line %d: empty section name", lineNo)
			}
			section, err := sectionMap(result, strings.Split(name, "."))
			if err != nil {
				return nil, fmt.Errorf("INI parse error: line %d: %w", lineNo, err)
			}
			current = section
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("INI parse error: line %d: expected key=value", lineNo)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("INI parse error: line %d: empty key", lineNo)
		}
		parsed, err := parseINIValue(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("INI parse error: line %d: %w", lineNo, err)
		}
		current[key] = parsed
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("INI parse error: %w", err)
	}
	return result, nil
}

func sectionMap(root map[string]any, path []string) (map[string]any, error) {
	m := root
	for _, part := range path {
		part = strings.TrimSpace(part)
		next, exists := m[part]
		if !exists {
			child := map[string]any{}
			m[part] = child
			m = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("section %q conflicts with a key", part)
		}
		m = child
	}
	return m, nil
}

func parseINIValue(s string) (any, error) {
	if strings.HasPrefix(s, `"`) {
		return strconv.Unquote(s)
	}
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if s != "" && strings.ContainsAny(s[:1], "+-.0123456789") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	}
	return s, nil
}
