package validate

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"
	"time"
)

var (
	varPattern  = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	funcPattern = regexp.MustCompile(`^(formatDate|formatDateTime|formatCurrency|formatTemperature|formatHumidity|uppercase)\s+(.+)$`)
	pipePattern = regexp.MustCompile(`^([^|]+)(?:\|(.+))?$`)
	pathPattern = regexp.MustCompile(`^[a-zA-Z0-9_.]+$`)
)

// Variable is one {{...}} placeholder found in a text.
type Variable struct {
	Raw       string
	Path      string
	Formatter string
	Start     int
	End       int
}

// CheckVariables reports problems with the {{variable}} placeholders in s.
// Three forms are accepted: {{path}}, {{path|formatter}} and
// {{formatter path}}.
func CheckVariables(s string) []string {
	var errs []string
	open := strings.Count(s, "{{")
	closed := strings.Count(s, "}}")
	if open != closed {
		errs = append(errs, fmt.Sprintf("unbalanced variable braces: %d opened vs %d closed", open, closed))
	}
	if strings.Contains(s, "{{}}") {
		errs = append(errs, "empty variable found: {{}}")
	}
	for _, m := range varPattern.FindAllStringSubmatch(s, -1) {
		body := strings.TrimSpace(m[1])
		if body == "" {
			errs = append(errs, "empty variable found: {{}}")
			continue
		}
		v, ok := parseBody(body)
		if !ok || !pathPattern.MatchString(v.Path) {
			errs = append(errs, fmt.Sprintf("malformed variable: {{%s}}", body))
		}
	}
	return errs
}

func parseBody(body string) (Variable, bool) {
	if m := funcPattern.FindStringSubmatch(body); m != nil {
		return Variable{Formatter: m[1], Path: strings.TrimSpace(m[2])}, true
	}
	if m := pipePattern.FindStringSubmatch(body); m != nil {
		return Variable{Path: strings.TrimSpace(m[1]), Formatter: strings.TrimSpace(m[2])}, true
	}
	return Variable{}, false
}

// ParseVariables returns the placeholders of s in order of appearance.
func ParseVariables(s string) []Variable {
	var out []Variable
	for _, idx := range varPattern.FindAllStringSubmatchIndex(s, -1) {
		body := strings.TrimSpace(s[idx[2]:idx[3]])
		v, _ := parseBody(body)
		v.Raw = body
		v.Start, v.End = idx[0], idx[1]
		out = append(out, v)
	}
	return out
}

func HasVariables(s string) bool {
	return varPattern.MatchString(s)
}

// Render replaces every placeholder with the value found at its dot path in
// data. Placeholders whose path is missing are left untouched.
func Render(s string, data map[string]any) string {
	vars := ParseVariables(s)
	if len(vars) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, v := range vars {
		b.WriteString(s[last:v.Start])
		val, ok := lookup(data, v.Path)
		if !ok {
			b.WriteString(s[v.Start:v.End])
			last = v.End
			continue
		}
		out := formatValue(val)
		if v.Formatter == "uppercase" {
			out = strings.ToUpper(out)
		}
		b.WriteString(out)
		last = v.End
	}
	b.WriteString(s[last:])
	return b.String()
}

func lookup(data map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = data
	for _, key := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[key]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			rv := reflect.ValueOf(cur)
			if key == "length" && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
				cur = rv.Len()
				continue
			}
			return nil, false
		}
	}
	return cur, true
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case time.Time:
		return x.Format("2006-01-02")
	case float64:
		if x == math.Trunc(x) {
			return fmt.Sprintf("%.0f", x)
		}
		return fmt.Sprintf("%.2f", x)
	case float32:
		return formatValue(float64(x))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return fmt.Sprint(rv.Len())
	}
	return fmt.Sprint(v)
}
