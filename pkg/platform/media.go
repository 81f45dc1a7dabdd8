package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// MediaEnv is the state a media query is evaluated against.
type MediaEnv struct {
	Width         float64
	Height        float64
	ColorScheme   string // "light" or "dark"
	ReducedMotion bool
}

// mediaFeature is one parenthesised condition.
type mediaFeature struct {
	name  string
	value string
}

// MediaQuery is a parsed media query list: any clause matching makes the
// query match, and a clause matches when all of its features do.
type MediaQuery struct {
	raw     string
	clauses [][]mediaFeature
}

// ParseMediaQuery parses the subset of media queries hooks rely on:
// min/max width and height (px or em), orientation, prefers-color-scheme and
// prefers-reduced-motion, joined with "and", with an optional leading media
// type, and comma-separated alternatives.
func ParseMediaQuery(query string) (*MediaQuery, error) {
	q := &MediaQuery{raw: query}
	for _, part := range strings.Split(query, ",") {
		clause, err := parseClause(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		q.clauses = append(q.clauses, clause)
	}
	return q, nil
}

func parseClause(s string) ([]mediaFeature, error) {
	if s == "" {
		return nil, fmt.Errorf("empty media query clause")
	}
	var features []mediaFeature
	for _, tok := range strings.Split(strings.ToLower(s), " and ") {
		tok = strings.TrimSpace(tok)
		switch tok {
		case "all", "screen", "only screen":
			continue
		}
		if !strings.HasPrefix(tok, "(") || !strings.HasSuffix(tok, ")") {
			return nil, fmt.Errorf("unsupported media query token %q", tok)
		}
		inner := strings.TrimSpace(tok[1 : len(tok)-1])
		name, value, ok := strings.Cut(inner, ":")
		f := mediaFeature{name: strings.TrimSpace(name)}
		if ok {
			f.value = strings.TrimSpace(value)
		}
		if err := f.validate(); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, nil
}

func (f mediaFeature) validate() error {
	switch f.name {
	case "min-width", "max-width", "min-height", "max-height":
		_, err := parseLength(f.value)
		return err
	case "orientation":
		if f.value != "portrait" && f.value != "landscape" {
			return fmt.Errorf("invalid orientation %q", f.value)
		}
	case "prefers-color-scheme":
		if f.value != "dark" && f.value != "light" {
			return fmt.Errorf("invalid color scheme %q", f.value)
		}
	case "prefers-reduced-motion":
		if f.value != "reduce" && f.value != "no-preference" {
			return fmt.Errorf("invalid reduced motion value %q", f.value)
		}
	default:
		return fmt.Errorf("unsupported media feature %q", f.name)
	}
	return nil
}

// parseLength accepts "640px", "40em", "40rem" and "0".
func parseLength(s string) (float64, error) {
	mult := 1.0
	num := s
	switch {
	case strings.HasSuffix(s, "px"):
		num = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "rem"):
		num, mult = strings.TrimSuffix(s, "rem"), 16
	case strings.HasSuffix(s, "em"):
		num, mult = strings.TrimSuffix(s, "em"), 16
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	if num == s && v != 0 {
		return 0, fmt.Errorf("length %q needs a unit", s)
	}
	return v * mult, nil
}

// String returns the query as written.
func (q *MediaQuery) String() string {
	return q.raw
}

// Eval evaluates the query against env.
func (q *MediaQuery) Eval(env MediaEnv) bool {
	for _, clause := range q.clauses {
		if evalClause(clause, env) {
			return true
		}
	}
	return false
}

func evalClause(features []mediaFeature, env MediaEnv) bool {
	for _, f := range features {
		if !f.eval(env) {
			return false
		}
	}
	return true
}

func (f mediaFeature) eval(env MediaEnv) bool {
	switch f.name {
	case "min-width":
		v, _ := parseLength(f.value)
		return env.Width >= v
	case "max-width":
		v, _ := parseLength(f.value)
		return env.Width <= v
	case "min-height":
		v, _ := parseLength(f.value)
		return env.Height >= v
	case "max-height":
		v, _ := parseLength(f.value)
		return env.Height <= v
	case "orientation":
		if f.value == "portrait" {
			return env.Height >= env.Width
		}
		return env.Width > env.Height
	case "prefers-color-scheme":
		scheme := env.ColorScheme
		if scheme == "" {
			scheme = "light"
		}
		return scheme == f.value
	case "prefers-reduced-motion":
		return env.ReducedMotion == (f.value == "reduce")
	}
	return false
}
