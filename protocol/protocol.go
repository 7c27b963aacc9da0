// Package protocol contains the definition of the objects exchanged between the
// parts of nbsvg: DOM operations streamed to the browser (JSON) and model updates
// published on the bus (using the standard Go `encoding/gob` package).
package protocol

import "encoding/gob"

const (
	// NBSVG_CONFIG_ENV is the name of the environment variable holding the path
	// to the YAML configuration used by the `nbsvg` command, when `-config` is not given.
	NBSVG_CONFIG_ENV = "NBSVG_CONFIG"

	// HostElementId is the id of the element, in the page served by the live-view
	// server, under which each view mounts its container.
	HostElementId = "nbsvg-host"

	// SVGNamespace is the XML namespace of SVG elements.
	SVGNamespace = "http://www.w3.org/2000/svg"
)

type MIMEType string

const (
	MIMETextHTML       MIMEType = "text/html"
	MIMETextJavascript MIMEType = "text/javascript"
	MIMEImageSVG       MIMEType = "image/svg+xml"
)

// OpKind enumerates the DOM operations a remote document can request.
type OpKind string

const (
	// OpCreate creates a detached element with Tag, registered under Id.
	OpCreate OpKind = "create"

	// OpAppend appends the element Id as the last child of Parent.
	OpAppend OpKind = "append"

	// OpMarkup replaces the whole content of element Id with Markup.
	OpMarkup OpKind = "markup"

	// OpStyle sets the style Property of element Id to Value.
	OpStyle OpKind = "style"
)

// Op is one DOM operation, serialized as JSON to the browser shim.
// Only the fields relevant to Kind are set.
type Op struct {
	Kind     OpKind `json:"op"`
	Id       string `json:"id"`
	Parent   string `json:"parent,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Markup   string `json:"markup,omitempty"`
	Property string `json:"property,omitempty"`
	Value    string `json:"value,omitempty"`
}

// ModelUpdate is published on the bus whenever an attribute of a model changes.
type ModelUpdate struct {
	// ModelId identifies the model on the publishing side. It is also used as the
	// subscription topic.
	ModelId string

	// Attr is the attribute name, e.g. "svg".
	Attr string

	// Value is the new value of the attribute.
	Value any
}

func init() {
	gob.Register(&ModelUpdate{})
}
