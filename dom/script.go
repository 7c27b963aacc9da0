package dom

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rmorshead/nbsvg/protocol"
)

// ScriptWriter is an OpSender that writes each operation as a `<script>` block of
// self-contained Javascript to an io.Writer.
//
// Combined with a Remote document, it produces an HTML fragment that replays the
// rendering of a view when loaded in a browser. The content is static: it doesn't
// follow later changes to the model, except by writing more scripts.
type ScriptWriter struct {
	w io.Writer
}

// NewScriptWriter returns a ScriptWriter that writes to w.
func NewScriptWriter(w io.Writer) *ScriptWriter {
	return &ScriptWriter{w: w}
}

// Send implements OpSender.
func (s *ScriptWriter) Send(op protocol.Op) error {
	js, err := Javascript(op)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintf(s.w, "<script>%s</script>\n", js); err != nil {
		return errors.Wrapf(err, "failed to write javascript for %q operation", op.Kind)
	}
	return nil
}

// jsLookup is a javascript expression that finds the element with the given (escaped) id:
// either created by an OpCreate, and still detached, or in the document.
const jsLookup = `((globalThis.nbsvg_elements && globalThis.nbsvg_elements['%[1]s']) || document.getElementById('%[1]s'))`

// Javascript returns the javascript code that executes op in the browser.
func Javascript(op protocol.Op) (string, error) {
	id := escapeForJavascriptSingleQuotes(op.Id)
	switch op.Kind {
	case protocol.OpCreate:
		tag := escapeForJavascriptSingleQuotes(op.Tag)
		create := fmt.Sprintf(`document.createElement('%s')`, tag)
		if op.Tag == "svg" {
			create = fmt.Sprintf(`document.createElementNS('%s', 'svg')`, protocol.SVGNamespace)
		}
		return fmt.Sprintf(`
(() => {
	const registry = globalThis.nbsvg_elements = globalThis.nbsvg_elements || {};
	let element = %s;
	element.id = '%s';
	registry['%s'] = element;
})();
`, create, id, id), nil

	case protocol.OpAppend:
		return fmt.Sprintf(`
(() => {
	let parent = %s;
	let child = %s;
	parent.appendChild(child);
})();
`, fmt.Sprintf(jsLookup, escapeForJavascriptSingleQuotes(op.Parent)), fmt.Sprintf(jsLookup, id)), nil

	case protocol.OpMarkup:
		return fmt.Sprintf(`
(() => {
	let element = %s;
	element.innerHTML = '%s';
})();
`, fmt.Sprintf(jsLookup, id), escapeForJavascriptSingleQuotes(op.Markup)), nil

	case protocol.OpStyle:
		return fmt.Sprintf(`
(() => {
	let element = %s;
	element.style.setProperty('%s', '%s');
})();
`, fmt.Sprintf(jsLookup, id), escapeForJavascriptSingleQuotes(op.Property), escapeForJavascriptSingleQuotes(op.Value)), nil
	}
	return "", errors.Errorf("unknown DOM operation %q", op.Kind)
}
