// Package wasm implements a dom.Document over the real DOM of the page, for views
// running in the browser itself, when the program is compiled to WebAssembly.
//
// It's built on top of `github.com/gowebapi/webapi`.
//
// The constant IsWasm can be used to check whether the program was compiled for wasm.
// It is the only symbol exported for non-wasm builds.
package wasm
