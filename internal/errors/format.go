package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
)

type ansi string

const (
	ansiReset  ansi = "\033[0m"
	ansiBold   ansi = "\033[1m"
	ansiRed    ansi = "\033[31m"
	ansiYellow ansi = "\033[33m"
	ansiBlue   ansi = "\033[34m"
	ansiCyan   ansi = "\033[36m"
	ansiGray   ansi = "\033[90m"
)

var noColor atomic.Bool

// DisableColors turns off ANSI escapes in Format and FprintError.
func DisableColors() { noColor.Store(true) }

// EnableColors turns ANSI escapes back on.
func EnableColors() { noColor.Store(false) }

func paint(text string, codes ...ansi) string {
	if noColor.Load() || len(codes) == 0 {
		return text
	}
	var b strings.Builder
	for _, c := range codes {
		b.WriteString(string(c))
	}
	b.WriteString(text)
	b.WriteString(string(ansiReset))
	return b.String()
}

// Format renders the error as a multi-line block for a terminal.
func (e *Error) Format() string {
	var b strings.Builder

	header := "ERROR: "
	if e.Code != "" {
		header = "ERROR " + e.Code + ": "
	}
	fmt.Fprintf(&b, "\n%s%s\n\n", paint(header, ansiRed, ansiBold), e.Message)

	field := func(label, value string, codes ...ansi) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "  %s%s\n\n", paint(label, ansiGray), paint(value, codes...))
	}

	field("op: ", e.Op, ansiCyan)
	if lines := wrapText(e.Detail, 70); len(lines) > 0 {
		for _, line := range lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", paint("Hint: ", ansiYellow), e.Suggestion)
	}
	if e.Wrapped != nil {
		field("Cause: ", e.Wrapped.Error())
	}
	field("Learn more: ", e.DocURL, ansiBlue)

	return b.String()
}

// FormatCompact returns "op: code: message", omitting empty parts.
func (e *Error) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

type jsonError struct {
	Code       string   `json:"code,omitempty"`
	Category   Category `json:"category"`
	Message    string   `json:"message"`
	Detail     string   `json:"detail,omitempty"`
	Op         string   `json:"op,omitempty"`
	Cause      string   `json:"cause,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	DocURL     string   `json:"docUrl,omitempty"`
}

// FormatJSON returns the error as a single-line JSON object.
func (e *Error) FormatJSON() string {
	v := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Op:         e.Op,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Wrapped != nil {
		v.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText splits text into lines no longer than width, breaking on spaces.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := []string{words[0]}
	for _, word := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(word) > width {
			lines = append(lines, word)
			continue
		}
		*last += " " + word
	}
	return lines
}

// PrintError writes err to stderr.
func PrintError(err error) {
	FprintError(os.Stderr, err)
}

// FprintError writes err to w, using the block format for coded errors.
func FprintError(w io.Writer, err error) {
	var e *Error
	if stderrors.As(err, &e) {
		io.WriteString(w, e.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint("ERROR:", ansiRed, ansiBold), err.Error())
}
