package platform

import "testing"

func TestParseMediaQuery(t *testing.T) {
	valid := []string{
		"(min-width: 640px)",
		"screen and (min-width: 40em) and (max-width: 1023px)",
		"(orientation: portrait)",
		"(prefers-color-scheme: dark)",
		"(prefers-reduced-motion: reduce)",
		"(max-width: 0), (min-height: 10rem)",
	}
	for _, q := range valid {
		if _, err := ParseMediaQuery(q); err != nil {
			t.Errorf("ParseMediaQuery(%q): %v", q, err)
		}
	}

	invalid := []string{
		"",
		"min-width: 640px",
		"(min-width: 640)",
		"(hover: hover)",
		"(orientation: sideways)",
	}
	for _, q := range invalid {
		if _, err := ParseMediaQuery(q); err == nil {
			t.Errorf("ParseMediaQuery(%q): expected error", q)
		}
	}
}

func TestMediaQueryEval(t *testing.T) {
	env := MediaEnv{Width: 500, Height: 800, ColorScheme: "dark"}

	tests := []struct {
		query string
		want  bool
	}{
		{"(min-width: 0px)", true},
		{"(min-width: 640px)", false},
		{"(max-width: 500px)", true},
		{"(min-width: 30em)", true},
		{"(orientation: portrait)", true},
		{"(orientation: landscape)", false},
		{"(prefers-color-scheme: dark)", true},
		{"(prefers-reduced-motion: reduce)", false},
		{"(prefers-reduced-motion: no-preference)", true},
		{"(min-width: 640px), (prefers-color-scheme: dark)", true},
		{"(min-width: 100px) and (max-width: 400px)", false},
	}
	for _, tt := range tests {
		q, err := ParseMediaQuery(tt.query)
		if err != nil {
			t.Fatalf("ParseMediaQuery(%q): %v", tt.query, err)
		}
		if got := q.Eval(env); got != tt.want {
			t.Errorf("Eval(%q): got %v, want %v", tt.query, got, tt.want)
		}
	}
}
