// Package errors provides coded, actionable errors for vango-use.
//
// Every failure a hook can surface has a code that maps to a short message,
// a detailed explanation and a documentation URL. Codes are grouped by
// category:
//   - U: unavailable capabilities (no storage, no clipboard, headless)
//   - T: transient failures (permission refusals, I/O, network)
//   - M: misuse (hook order changed, invalid options, disposed units)
//   - C: configuration and CLI errors
//
// Hooks degrade rather than fail when a capability is missing, so U errors
// are mostly reported through the Err cell of a hook result, not returned.
//
// # Usage
//
//	err := errors.New("T002").
//	    WithOp("clipboard.copy").
//	    WithSuggestion("Serve the page over HTTPS or grant clipboard-write").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR T002: Clipboard write rejected
//	//
//	//   op: clipboard.copy
//	//
//	//   The asynchronous clipboard refused the write and the legacy
//	//   copy path failed as well.
//	//
//	//   Hint: Serve the page over HTTPS or grant clipboard-write
//	//
//	//   Learn more: https://vango.dev/docs/use/errors/T002
package errors
