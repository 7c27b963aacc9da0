// Package bus mirrors model attributes across processes, using ZeroMQ PUB/SUB sockets.
//
// A Publisher, on the side that owns the model (e.g. the notebook kernel), publishes
// every change of the selected attributes. A Subscriber, on the display side, applies
// them to its own copy of the model, where views are bound.
//
// Each message has two frames: the publishing model's id, used as the subscription
// topic, and a gob encoded protocol.ModelUpdate.
//
// As usual with PUB/SUB, messages published before a subscriber is connected are lost:
// use Publisher.Publish to re-send the current values.
package bus

import (
	"bytes"
	"context"
	"encoding/gob"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/pkg/errors"
	"github.com/rmorshead/nbsvg/common"
	"github.com/rmorshead/nbsvg/model"
	"github.com/rmorshead/nbsvg/protocol"
	"k8s.io/klog/v2"
)

// syncSocket wraps a zmq socket with a lock which should be used to control write access.
type syncSocket struct {
	socket zmq4.Socket
	mu     sync.Mutex
}

// runLocked locks socket and runs `fn`.
func (s *syncSocket) runLocked(fn func(socket zmq4.Socket) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.socket)
}

// Publisher publishes changes of a model's attributes.
type Publisher struct {
	model  *model.Model
	attrs  []string
	socket syncSocket
	subs   []model.SubscriptionID
	closed bool
}

// NewPublisher binds a PUB socket to endpoint (e.g. "tcp://127.0.0.1:5555") and starts
// publishing changes to the given attributes of m.
func NewPublisher(ctx context.Context, endpoint string, m *model.Model, attrs ...string) (*Publisher, error) {
	p := &Publisher{
		model:  m,
		attrs:  attrs,
		socket: syncSocket{socket: zmq4.NewPub(ctx)},
	}
	if err := p.socket.socket.Listen(endpoint); err != nil {
		_ = p.socket.socket.Close()
		return nil, errors.Wrapf(err, "bus: failed to listen on %q", endpoint)
	}
	for _, attr := range attrs {
		id := m.On(model.ChangeEvent(attr), func(_ *model.Model, attr string, value any) {
			if err := p.send(attr, value); err != nil {
				klog.Errorf("%+v", err)
			}
		})
		p.subs = append(p.subs, id)
	}
	klog.V(1).Infof("bus: publishing %q of model %s on %q", attrs, m.Id(), endpoint)
	return p, nil
}

// encodeUpdate returns the gob encoding of update.
func encodeUpdate(update *protocol.ModelUpdate) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(update); err != nil {
		return nil, errors.Wrapf(err, "bus: failed to encode update of %q (value type %T)", update.Attr, update.Value)
	}
	return buf.Bytes(), nil
}

func (p *Publisher) send(attr string, value any) error {
	body, err := encodeUpdate(&protocol.ModelUpdate{ModelId: p.model.Id(), Attr: attr, Value: value})
	if err != nil {
		return err
	}
	return p.socket.runLocked(func(socket zmq4.Socket) error {
		if p.closed {
			return errors.Errorf("bus: publisher for model %s is closed", p.model.Id())
		}
		err := socket.SendMulti(zmq4.NewMsgFrom([]byte(p.model.Id()), body))
		return errors.WithMessagef(err, "bus: failed to publish %q of model %s", attr, p.model.Id())
	})
}

// Publish sends the current value of the given attributes, or of all the published
// attributes if none is given. Attributes not set in the model are skipped.
func (p *Publisher) Publish(attrs ...string) error {
	if len(attrs) == 0 {
		attrs = p.attrs
	}
	for _, attr := range attrs {
		value := p.model.Get(attr)
		if value == nil {
			continue
		}
		if err := p.send(attr, value); err != nil {
			return err
		}
	}
	return nil
}

// Close stops publishing and closes the socket.
func (p *Publisher) Close() error {
	for _, id := range p.subs {
		p.model.Off(id)
	}
	return p.socket.runLocked(func(socket zmq4.Socket) error {
		if p.closed {
			return nil
		}
		p.closed = true
		return socket.Close()
	})
}

// Subscriber applies the updates received from a Publisher to a local model.
type Subscriber struct {
	model    *model.Model
	modelIds common.Set[string]
	socket   zmq4.Socket
	cancel   context.CancelFunc
	done     *common.Latch

	mu       sync.Mutex
	err      error
	received int
}

// NewSubscriber dials endpoint and applies received updates to m, in a separate goroutine.
// If modelIds are given, only updates published for those models are applied; otherwise
// every update is.
func NewSubscriber(ctx context.Context, endpoint string, m *model.Model, modelIds ...string) (*Subscriber, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscriber{
		model:    m,
		modelIds: common.SetWith(modelIds...),
		socket:   zmq4.NewSub(ctx),
		cancel:   cancel,
		done:     common.NewLatch(),
	}
	if err := s.socket.Dial(endpoint); err != nil {
		cancel()
		_ = s.socket.Close()
		return nil, errors.Wrapf(err, "bus: failed to dial %q", endpoint)
	}
	topics := modelIds
	if len(topics) == 0 {
		topics = []string{""}
	}
	for _, topic := range topics {
		if err := s.socket.SetOption(zmq4.OptionSubscribe, topic); err != nil {
			cancel()
			_ = s.socket.Close()
			return nil, errors.Wrapf(err, "bus: failed to subscribe to topic %q", topic)
		}
	}
	go s.poll(ctx)
	klog.V(1).Infof("bus: subscribed to %q for model %s", endpoint, m.Id())
	return s, nil
}

// poll loops receiving messages until the socket is closed.
func (s *Subscriber) poll(ctx context.Context) {
	defer s.done.Trigger()
	for {
		msg, err := s.socket.Recv()
		if err != nil {
			if ctx.Err() == nil {
				s.setErr(errors.Wrapf(err, "bus: failed to receive, subscriber stopped"))
			}
			return
		}
		if len(msg.Frames) != 2 {
			klog.Warningf("bus: dropping message with %d frames, expected 2", len(msg.Frames))
			continue
		}
		update := &protocol.ModelUpdate{}
		if err := gob.NewDecoder(bytes.NewReader(msg.Frames[1])).Decode(update); err != nil {
			klog.Warningf("bus: dropping message from model %q, failed to decode: %v", msg.Frames[0], err)
			continue
		}
		if len(s.modelIds) > 0 && !s.modelIds.Has(update.ModelId) {
			continue
		}
		klog.V(2).Infof("bus: received %q from model %s", update.Attr, update.ModelId)
		s.mu.Lock()
		s.received++
		s.mu.Unlock()
		s.model.Set(update.Attr, update.Value)
	}
}

func (s *Subscriber) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
		klog.Errorf("%+v", err)
	}
}

// Err returns the error that stopped the subscriber, if any.
func (s *Subscriber) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Received returns the number of updates applied so far.
func (s *Subscriber) Received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received
}

// CloseTimeout bounds how long Subscriber.Close waits for the polling goroutine.
const CloseTimeout = 5 * time.Second

// Close stops the subscriber and waits, at most CloseTimeout, for its goroutine to finish.
func (s *Subscriber) Close() error {
	s.cancel()
	err := errors.Wrapf(s.socket.Close(), "bus: failed to close subscriber of model %s", s.model.Id())
	select {
	case <-s.done.WaitChan():
	case <-time.After(CloseTimeout):
		return errors.Errorf("bus: subscriber of model %s didn't stop within %s", s.model.Id(), CloseTimeout)
	}
	return err
}
