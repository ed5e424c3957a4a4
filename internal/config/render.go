package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	var b strings.Builder
	b.WriteString("# folio configuration (TOML)\n")

	opts := GetConfigOptions()
	topLevel := make([]ConfigOption, 0, len(opts))
	sections := make(map[string][]ConfigOption)
	sectionOrder := make([]string, 0)

	for _, o := range opts {
		if !strings.Contains(o.Key, ".") {
			topLevel = append(topLevel, o)
			continue
		}
		parts := strings.SplitN(o.Key, ".", 2)
		section := parts[0]
		if _, ok := sections[section]; !ok {
			sectionOrder = append(sectionOrder, section)
		}
		sections[section] = append(sections[section], ConfigOption{
			Key:     parts[1],
			Default: o.Default,
			Comment: o.Comment,
		})
	}

	for _, o := range topLevel {
		writeTOMLOption(&b, o.Key, o.Default, o.Comment)
	}

	for _, section := range sectionOrder {
		opts := sections[section]
		if len(opts) == 0 {
			continue
		}
		b.WriteString("[" + section + "]\n")
		for _, o := range opts {
			writeTOMLOption(&b, o.Key, o.Default, o.Comment)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// UpdateTOML merges defaults into an existing TOML string and comments out unknown keys.
// Missing top-level keys go above the first table; missing table keys are
// appended to their existing table, or to a new table at the end.
func UpdateTOML(existing string) (string, bool) {
	lines := strings.Split(existing, "\n")
	opts := GetConfigOptions()

	known := make(map[string]ConfigOption, len(opts))
	mapPrefixes := make(map[string]bool)
	for _, o := range opts {
		known[o.Key] = o
		if _, ok := o.Default.(map[string]any); ok {
			mapPrefixes[o.Key] = true
		}
	}

	existingKeys := make(map[string]bool)
	prefixSeen := make(map[string]bool)
	// sectionEnd is the index in out just past the last key of each table.
	sectionEnd := make(map[string]int)
	firstSection := -1
	currentSection := ""
	out := make([]string, 0, len(lines))
	changed := false

	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") {
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]") {
			currentSection = strings.TrimSpace(trim[1 : len(trim)-1])
			if firstSection == -1 {
				firstSection = len(out)
			}
			out = append(out, line)
			sectionEnd[currentSection] = len(out)
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		fullKey := key
		if currentSection != "" {
			fullKey = currentSection + "." + key
		}
		existingKeys[fullKey] = true
		for prefix := range mapPrefixes {
			if fullKey == prefix || strings.HasPrefix(fullKey, prefix+".") {
				prefixSeen[prefix] = true
			}
		}
		if !isKnownKey(fullKey, known, mapPrefixes) {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema")
			out = append(out, indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
			continue
		}
		out = append(out, line)
		if currentSection != "" {
			sectionEnd[currentSection] = len(out)
		}
	}

	var missingTop []string
	missingSections := make(map[string][]string)
	sectionOrder := make([]string, 0)
	for _, o := range opts {
		if _, ok := o.Default.(map[string]any); ok {
			if prefixSeen[o.Key] {
				continue
			}
		} else if existingKeys[o.Key] {
			continue
		}
		if section, key, ok := strings.Cut(o.Key, "."); ok {
			if _, seen := missingSections[section]; !seen {
				sectionOrder = append(sectionOrder, section)
			}
			lines := missingSections[section]
			writeTOMLOptionLines(&lines, key, o.Default, o.Comment)
			missingSections[section] = lines
		} else {
			writeTOMLOptionLines(&missingTop, o.Key, o.Default, o.Comment)
		}
	}
	if len(missingTop) == 0 && len(missingSections) == 0 {
		return strings.Join(out, "\n"), changed
	}

	type insertion struct {
		at    int
		lines []string
	}
	var inserts []insertion
	var tail []string
	if len(missingTop) > 0 {
		block := append([]string{"# Added by config update"}, missingTop...)
		if firstSection == -1 {
			tail = append(tail, "", "# Added by config update")
			tail = append(tail, missingTop...)
		} else {
			inserts = append(inserts, insertion{firstSection, block})
		}
	}
	for _, section := range sectionOrder {
		block := missingSections[section]
		if end, ok := sectionEnd[section]; ok {
			inserts = append(inserts, insertion{end, append([]string{"# Added by config update"}, block...)})
			continue
		}
		if len(tail) == 0 {
			tail = append(tail, "", "# Added by config update")
		}
		tail = append(tail, "["+section+"]")
		tail = append(tail, block...)
	}

	// Apply from the back so earlier indexes stay valid.
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].at > inserts[j].at })
	for _, ins := range inserts {
		out = append(out[:ins.at], append(append([]string{}, ins.lines...), out[ins.at:]...)...)
	}
	out = append(out, tail...)
	return strings.Join(out, "\n"), true
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "[") {
		return "", false
	}
	if strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

func isKnownKey(key string, known map[string]ConfigOption, prefixes map[string]bool) bool {
	if _, ok := known[key]; ok {
		return true
	}
	for prefix := range prefixes {
		if key == prefix || strings.HasPrefix(key, prefix+".") {
			return true
		}
	}
	return false
}

func writeTOMLOption(b *strings.Builder, key string, value any, comment string) {
	var lines []string
	writeTOMLOptionLines(&lines, key, value, comment)
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
}

func writeTOMLOptionLines(lines *[]string, key string, value any, comment string) {
	rendered, ok := tomlValue(value)
	if !ok {
		return
	}
	if comment != "" {
		*lines = append(*lines, "# "+comment)
	}
	*lines = append(*lines, key+" = "+rendered, "")
}

// tomlValue renders a default as a TOML literal. Durations are stored as
// strings in the option table and render as such.
func tomlValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v), true
	case bool, int, int64:
		return fmt.Sprintf("%v", v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]", true
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s = %q", k, fmt.Sprint(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}", true
	}
	return "", false
}
