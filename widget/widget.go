// Package widget binds SVG drawings (see package svg) to models, so that any view
// of the model (see package view) follows the drawing as it changes.
//
// Synchronization can be turned off globally with ToggleSync, for instance while
// building a large drawing, and then turned back on: the next change (or an
// explicit call to Notify) pushes the whole drawing at once.
package widget

import (
	"sync/atomic"

	"github.com/rmorshead/nbsvg/common"
	"github.com/rmorshead/nbsvg/model"
	"github.com/rmorshead/nbsvg/svg"
	"github.com/rmorshead/nbsvg/view"
	"k8s.io/klog/v2"
)

var syncDisabled atomic.Bool

// ToggleSync flips the global synchronization of widgets, and returns the new state.
func ToggleSync() bool {
	for {
		disabled := syncDisabled.Load()
		if syncDisabled.CompareAndSwap(disabled, !disabled) {
			return disabled // New state of "enabled" is the old state of "disabled".
		}
	}
}

// SyncEnabled returns whether widgets currently synchronize their drawings with their models.
func SyncEnabled() bool {
	return !syncDisabled.Load()
}

// SVGWidget keeps the view.AttrSVG attribute of a model equal to the markup of a drawing.
type SVGWidget struct {
	root  *svg.Element
	model *model.Model
}

// New binds the drawing rooted at root to m: the markup is set right away (if sync is
// enabled), and after every change to the drawing.
//
// It takes over the root's change hook (svg.Element.OnChange).
// If m is nil, a new model is created.
func New(root *svg.Element, m *model.Model) *SVGWidget {
	if root == nil {
		common.Panicf("widget.New() requires a drawing, got nil")
	}
	if m == nil {
		m = model.New(nil)
	}
	w := &SVGWidget{root: root, model: m}
	root.OnChange(w.Notify)
	w.Notify()
	return w
}

// Notify renders the drawing into the model. It does nothing if sync is disabled.
func (w *SVGWidget) Notify() {
	if !SyncEnabled() {
		klog.V(2).Infof("widget: sync disabled, model %s not updated", w.model.Id())
		return
	}
	w.model.Set(view.AttrSVG, w.root.Markup())
}

// Model returns the model the drawing is bound to.
func (w *SVGWidget) Model() *model.Model {
	return w.model
}

// Drawing returns the root of the drawing.
func (w *SVGWidget) Drawing() *svg.Element {
	return w.root
}

// Close detaches the widget from the drawing: later changes are not propagated.
func (w *SVGWidget) Close() {
	w.root.OnChange(nil)
}
