// Package dom defines the document capabilities a view needs to render into a DOM,
// and the documents that implement them:
//
//   - Memory: an in-memory document tree, with markup parsed by `golang.org/x/net/html`.
//     Used to test views without a browser.
//   - Remote: translates each operation into a protocol.Op and hands it to an OpSender,
//     for instance a WebSocket connected to the browser (see package server), or a
//     ScriptWriter.
//
// The browser-native implementation, for programs compiled to WASM, is in package `wasm`.
//
// Documents don't return errors: like the markup injection of a browser, a bad
// markup renders as an empty or partial tree, and transport failures are logged
// and reported by the document's own `Err()` method, when it has one.
package dom

import (
	"strings"
)

// Handle identifies an element in a Document.
type Handle string

// Document is the set of DOM manipulation capabilities a view is given.
type Document interface {
	// CreateElement creates a new detached element with the given tag, and returns its handle.
	CreateElement(tag string) Handle

	// AppendChild appends child as the last child of parent. If child was attached
	// elsewhere, it is moved.
	AppendChild(parent, child Handle)

	// SetInnerMarkup replaces the whole content of the element with the given raw markup.
	SetInnerMarkup(h Handle, markup string)

	// SetStyle sets a style property of the element, e.g. ("overflow", "hidden").
	SetStyle(h Handle, property, value string)
}

// escapeForJavascriptSingleQuotes where str will be inserted in single quotes
// in a piece of javascript code.
func escapeForJavascriptSingleQuotes(str string) string {
	// - Escape the backslashes (\)
	str = strings.Replace(str, `\`, `\\`, -1)
	// - Escape single-quotes
	str = strings.Replace(str, `'`, `\'`, -1)
	// - Escape newlines
	str = strings.Replace(str, "\n", `\n`, -1)
	// - Escape carriage returns
	str = strings.Replace(str, "\r", `\r`, -1)
	// - Escape tabs
	str = strings.Replace(str, "\t", `\t`, -1)
	// - Break closing script tags, since the javascript is usually embedded in a `<script>` block.
	str = strings.Replace(str, "</", `<\/`, -1)
	return str
}
