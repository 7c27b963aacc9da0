//go:build !(js && wasm)

package wasm

// IsWasm is true when compiled for js/wasm.
const IsWasm = false
