package dom

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rmorshead/nbsvg/common"
	"github.com/rmorshead/nbsvg/protocol"
	"k8s.io/klog/v2"
)

// OpSender delivers DOM operations to wherever the real document lives.
type OpSender interface {
	Send(op protocol.Op) error
}

// OpSenderFunc adapts a function to an OpSender.
type OpSenderFunc func(op protocol.Op) error

// Send implements OpSender.
func (fn OpSenderFunc) Send(op protocol.Op) error { return fn(op) }

// Remote is a Document that forwards every operation, as a protocol.Op, to an OpSender.
//
// Errors are persistent: after the first failure to send, the document is disabled,
// the error is logged and later operations are dropped. Use Err to check its health.
type Remote struct {
	mu     sync.Mutex
	sender OpSender
	err    error
	sent   int
}

// NewRemote creates a Remote document that delivers its operations to sender.
func NewRemote(sender OpSender) *Remote {
	return &Remote{sender: sender}
}

// Err returns the error that disabled the document, or nil if it is healthy.
func (r *Remote) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Sent returns the number of operations successfully sent.
func (r *Remote) Sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

func (r *Remote) send(op protocol.Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		klog.V(2).Infof("dom.Remote: dropping %q for %q, document disabled", op.Kind, op.Id)
		return
	}
	if err := r.sender.Send(op); err != nil {
		r.err = errors.WithMessagef(err, "failed to send %q operation for element %q, remote document disabled", op.Kind, op.Id)
		klog.Errorf("%+v", r.err)
		return
	}
	r.sent++
}

// CreateElement implements Document. Handles are unique ids prefixed with "nbsvg_".
func (r *Remote) CreateElement(tag string) Handle {
	h := Handle("nbsvg_" + common.UniqueId())
	r.send(protocol.Op{Kind: protocol.OpCreate, Id: string(h), Tag: tag})
	return h
}

// AppendChild implements Document.
func (r *Remote) AppendChild(parent, child Handle) {
	r.send(protocol.Op{Kind: protocol.OpAppend, Id: string(child), Parent: string(parent)})
}

// SetInnerMarkup implements Document.
func (r *Remote) SetInnerMarkup(h Handle, markup string) {
	r.send(protocol.Op{Kind: protocol.OpMarkup, Id: string(h), Markup: markup})
}

// SetStyle implements Document.
func (r *Remote) SetStyle(h Handle, property, value string) {
	r.send(protocol.Op{Kind: protocol.OpStyle, Id: string(h), Property: property, Value: value})
}
