package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/use/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Unavailable capabilities (U001-U099)

	"U002": {
		Category: CategoryUnavailable,
		Message:  "Storage unavailable",
		Detail:   "The storage area is missing, so values are kept in memory only and are not shared with other consumers.",
		DocURL:   docBase + "U002",
	},
	"U003": {
		Category: CategoryUnavailable,
		Message:  "Clipboard unavailable",
		Detail:   "Neither the asynchronous clipboard nor the legacy copy path is available.",
		DocURL:   docBase + "U003",
	},
	"U004": {
		Category: CategoryUnavailable,
		Message:  "WebSocket unavailable",
		Detail:   "The platform has no WebSocket dialer.",
		DocURL:   docBase + "U004",
	},

	// Transient failures (T001-T099)

	"T002": {
		Category: CategoryTransient,
		Message:  "Clipboard write rejected",
		Detail:   "The asynchronous clipboard refused the write and the legacy copy path failed as well.",
		DocURL:   docBase + "T002",
	},
	"T003": {
		Category: CategoryTransient,
		Message:  "Storage operation failed",
		Detail:   "Reading or writing the storage backend failed. The in-memory value is still updated.",
		DocURL:   docBase + "T003",
	},
	"T004": {
		Category: CategoryTransient,
		Message:  "Stored value could not be decoded",
		Detail:   "The stored text is not valid for the value type. The hook uses its initial value instead.",
		DocURL:   docBase + "T004",
	},
	"T005": {
		Category: CategoryTransient,
		Message:  "WebSocket connection failed",
		Detail:   "Dialing or reading the WebSocket failed. The connection status moves to closed.",
		DocURL:   docBase + "T005",
	},

	// Misuse (M001-M099)

	"M001": {
		Category: CategoryMisuse,
		Message:  "Hook order changed between renders",
		Detail:   "Hooks must be called in the same order on every render. Do not call hooks inside conditionals or loops whose length changes.",
		DocURL:   docBase + "M001",
	},
	"M002": {
		Category: CategoryMisuse,
		Message:  "Invalid hook options",
		Detail:   "The options passed to the hook are invalid.",
		DocURL:   docBase + "M002",
	},
	"M004": {
		Category: CategoryMisuse,
		Message:  "Render did not settle",
		Detail:   "Renders kept marking units dirty. Check for effects that write a cell on every run.",
		DocURL:   docBase + "M004",
	},

	// Configuration and CLI (C001-C099)

	"C001": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "Could not find vango-use.json or vango-use.toml in the current directory or any parent directory.",
		DocURL:   docBase + "C001",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be parsed or failed validation.",
		DocURL:   docBase + "C002",
	},
	"C003": {
		Category: CategoryCLI,
		Message:  "Unknown storage backend",
		Detail:   "The storage backend must be one of memory, file or s3.",
		DocURL:   docBase + "C003",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// CodesByCategory returns the sorted codes of a category.
func CodesByCategory(cat Category) []string {
	var codes []string
	for code, t := range registry {
		if t.Category == cat {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}
