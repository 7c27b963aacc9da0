//go:build js && wasm

package wasm

import (
	"flag"
	"fmt"
	"sync"

	"github.com/gowebapi/webapi"
	"github.com/gowebapi/webapi/dom"
	"github.com/gowebapi/webapi/html"
	"github.com/rmorshead/nbsvg/common"
	nbdom "github.com/rmorshead/nbsvg/dom"
	"github.com/rmorshead/nbsvg/protocol"
	"k8s.io/klog/v2"
)

// IsWasm is true when compiled for js/wasm.
const IsWasm = true

// Document implements dom.Document on the page's DOM.
//
// Elements created with CreateElement are kept in a registry, so they can be used before
// being attached. Other handles are looked up by element id with GetElementById.
type Document struct {
	mu       sync.Mutex
	doc      *webapi.Document
	elements map[nbdom.Handle]*dom.Element
	count    int
}

var _ nbdom.Document = (*Document)(nil)

// NewDocument returns a Document for the current page.
func NewDocument() *Document {
	if flag.Lookup("test.v") != nil {
		// In tests there is no page.
		common.Panicf("wasm.NewDocument() requires a browser page")
	}
	return &Document{
		doc:      webapi.GetDocument(),
		elements: make(map[nbdom.Handle]*dom.Element),
	}
}

func (d *Document) lookup(h nbdom.Handle) *dom.Element {
	d.mu.Lock()
	e, found := d.elements[h]
	d.mu.Unlock()
	if found {
		return e
	}
	e = d.doc.GetElementById(string(h))
	if e == nil {
		common.Panicf("wasm.Document: element %q not found", h)
	}
	return e
}

// CreateElement implements dom.Document. SVG elements are created in the SVG namespace.
func (d *Document) CreateElement(tag string) nbdom.Handle {
	var e *dom.Element
	if tag == "svg" {
		namespace := protocol.SVGNamespace
		e = d.doc.CreateElementNS(&namespace, tag, nil)
	} else {
		e = d.doc.CreateElement(tag, nil)
	}
	d.mu.Lock()
	d.count++
	h := nbdom.Handle(fmt.Sprintf("nbsvg_%s_%d", common.UniqueId(), d.count))
	d.elements[h] = e
	d.mu.Unlock()
	e.SetId(string(h))
	klog.V(2).Infof("wasm.Document: created <%s> %q", tag, h)
	return h
}

// AppendChild implements dom.Document.
func (d *Document) AppendChild(parent, child nbdom.Handle) {
	d.lookup(parent).AppendChild(&d.lookup(child).Node)
}

// SetInnerMarkup implements dom.Document.
func (d *Document) SetInnerMarkup(h nbdom.Handle, markup string) {
	d.lookup(h).SetInnerHTML(markup)
}

// SetStyle implements dom.Document. SVG elements share the `style` property of HTML elements.
func (d *Document) SetStyle(h nbdom.Handle, property, value string) {
	html.HTMLElementFromWrapper(d.lookup(h)).Style().SetProperty(property, value, nil)
}

// WaitForever blocks forever, preventing the wasm program from exiting while the
// views are still being updated. Use at the end of main.
func WaitForever() {
	<-make(chan struct{})
}
