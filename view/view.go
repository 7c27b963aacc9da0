// Package view implements SVGView, a display adapter that renders the `svg` attribute
// of a model into a document, and keeps it current.
//
// Example, rendering into an in-memory document:
//
//	m := model.New(map[string]any{view.AttrSVG: "<circle r='5'/>"})
//	doc := dom.NewMemory()
//	v := view.New(doc, doc.Root("output"), m)
//	v.Mount()
//	defer v.Close()
//	m.Set(view.AttrSVG, "<rect width='10' height='10'/>") // Re-rendered.
package view

import (
	"github.com/rmorshead/nbsvg/dom"
	"github.com/rmorshead/nbsvg/model"
	"k8s.io/klog/v2"
)

const (
	// AttrSVG is the model attribute holding the raw SVG markup.
	AttrSVG = "svg"

	// ContainerTag is the tag of the element created by the view to hold the markup.
	ContainerTag = "svg"
)

// View is a display adapter with a lifecycle driven by its host: Mount is called once
// when the view is attached, and Close when it is torn down.
type View interface {
	Mount()
	Close()
}

// SVGView binds the content of an `<svg>` container to the AttrSVG attribute of a model.
//
// The model is only observed, never modified. The container is owned by the view.
type SVGView struct {
	doc   dom.Document
	host  dom.Handle
	model *model.Model

	container    dom.Handle
	subscription model.SubscriptionID
	mounted      bool
	closed       bool
}

var _ View = (*SVGView)(nil)

// New creates an SVGView that renders m into a container appended to host, in doc.
// Nothing happens in the document until Mount is called.
func New(doc dom.Document, host dom.Handle, m *model.Model) *SVGView {
	return &SVGView{doc: doc, host: host, model: m}
}

// Mount creates the container, appends it to the host element, makes the host clip
// overflowing content, renders the current markup and subscribes to its changes.
//
// It is meant to be called once: further calls are ignored.
func (v *SVGView) Mount() {
	if v.mounted {
		klog.Warningf("view.SVGView.Mount() called more than once for host %q, ignored", v.host)
		return
	}
	v.mounted = true
	v.container = v.doc.CreateElement(ContainerTag)
	v.doc.AppendChild(v.host, v.container)
	v.doc.SetStyle(v.host, "overflow", "hidden")
	// Initial Sync and subscription are atomic with respect to concurrent changes of the model.
	v.subscription = v.model.OnAfter(model.ChangeEvent(AttrSVG), v.Sync, func(*model.Model, string, any) {
		v.Sync()
	})
	klog.V(1).Infof("view.SVGView mounted container %q in %q, bound to model %s", v.container, v.host, v.model.Id())
}

// Sync replaces the whole content of the container with the current markup of the model.
func (v *SVGView) Sync() {
	v.doc.SetInnerMarkup(v.container, v.model.String(AttrSVG))
}

// Close releases the subscription to the model. The container is left in the document,
// its removal is up to the host. Closing twice is a no-op.
func (v *SVGView) Close() {
	if !v.mounted || v.closed {
		return
	}
	v.closed = true
	v.model.Off(v.subscription)
	klog.V(1).Infof("view.SVGView closed container %q", v.container)
}

// Container returns the handle of the container, or "" if the view is not mounted.
func (v *SVGView) Container() dom.Handle {
	return v.container
}

// Mounted returns whether Mount was called.
func (v *SVGView) Mounted() bool {
	return v.mounted
}
