//go:build js && wasm

// nbsvg-wasm runs the demo drawing entirely in the browser: the view is mounted on the
// page's real DOM, under the element with id "nbsvg-host".
//
// Build with:
//
//	GOOS=js GOARCH=wasm go build -o nbsvg.wasm ./cmd/nbsvg-wasm
package main

import (
	"context"
	"time"

	"github.com/rmorshead/nbsvg/protocol"
	"github.com/rmorshead/nbsvg/view"
	"github.com/rmorshead/nbsvg/wasm"
	"github.com/rmorshead/nbsvg/widget"
	"k8s.io/klog/v2"
)

func main() {
	drawing := widget.Demo()
	w := widget.New(drawing, nil)
	v := view.New(wasm.NewDocument(), protocol.HostElementId, w.Model())
	v.Mount()
	klog.Infof("nbsvg view mounted in %q", protocol.HostElementId)
	go widget.Animate(context.Background(), drawing, 100*time.Millisecond, 6)
	wasm.WaitForever()
}
