// Package model implements the observable state object a view is bound to.
//
// A Model holds named attributes and delivers "change:<attribute>" notifications
// to subscribers whenever an attribute's value changes. It plays the role of the
// widget model owned by the notebook kernel: views only observe it, and other
// parts of the program (the bus, file watchers, widgets) mutate it.
//
// Notifications for a model are delivered one at a time, in the goroutine that
// called Set, so subscribers never run concurrently with each other.
package model

import (
	"reflect"
	"strings"
	"sync"

	"github.com/rmorshead/nbsvg/common"
	"golang.org/x/exp/slices"
	"k8s.io/klog/v2"
)

// ChangePrefix is the prefix of change events: the event for attribute "svg" is "change:svg".
const ChangePrefix = "change:"

// ChangeEvent returns the name of the event delivered when attribute changes.
func ChangeEvent(attribute string) string {
	return ChangePrefix + attribute
}

// Callback is called with the model, the name of the attribute that changed and its new value.
type Callback func(m *Model, attribute string, value any)

// SubscriptionID is returned upon a subscription, and is used to unsubscribe.
// It can be discarded if one is never going to unsubscribe.
type SubscriptionID int

type subscriptionRecord struct {
	id       SubscriptionID
	callback Callback
}

// Model is an observable set of attributes. Create it with New.
type Model struct {
	id string

	// mu protects attributes and subscriptions.
	mu            sync.Mutex
	attributes    map[string]any
	subscriptions map[string][]subscriptionRecord
	idToEvent     map[SubscriptionID]string
	nextId        SubscriptionID

	// deliverMu serializes delivery of notifications.
	deliverMu sync.Mutex
}

// New creates a model with a unique id and the given initial attributes.
// No notifications are sent for the initial values.
func New(initial map[string]any) *Model {
	m := &Model{
		id:            common.UniqueId(),
		attributes:    make(map[string]any, len(initial)),
		subscriptions: make(map[string][]subscriptionRecord),
		idToEvent:     make(map[SubscriptionID]string),
	}
	for name, value := range initial {
		m.attributes[name] = value
	}
	return m
}

// Id returns the unique id of the model.
func (m *Model) Id() string {
	return m.id
}

// Get returns the current value of attribute, or nil if it is not set.
func (m *Model) Get(attribute string) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attributes[attribute]
}

// String returns the attribute as a string, or "" if it is not set or not a string.
func (m *Model) String(attribute string) string {
	return Value[string](m, attribute)
}

// Value returns the attribute converted to T. If it is not set, or holds a value of
// another type, it returns the zero value of T.
func Value[T any](m *Model, attribute string) T {
	value, _ := m.Get(attribute).(T)
	return value
}

// Attributes returns the names of the attributes currently set, sorted.
func (m *Model) Attributes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return common.SortedKeys(m.attributes)
}

// Set attribute to value. If the value differs from the current one, the subscribers
// of ChangeEvent(attribute) are called, in the order they subscribed, before Set returns.
//
// Callbacks must not call Set on the same model: deliveries are serialized and it would deadlock.
func (m *Model) Set(attribute string, value any) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	previous, found := m.attributes[attribute]
	if found && reflect.DeepEqual(previous, value) {
		m.mu.Unlock()
		return
	}
	m.attributes[attribute] = value
	// Copy subscribers, so callbacks can subscribe/unsubscribe.
	subs := slices.Clone(m.subscriptions[ChangeEvent(attribute)])
	m.mu.Unlock()

	klog.V(2).Infof("model %s: %q changed, %d subscriber(s)", m.id, attribute, len(subs))
	for _, sub := range subs {
		if !m.isSubscribed(sub.id) {
			// Unsubscribed by an earlier callback.
			continue
		}
		sub.callback(m, attribute, value)
	}
}

func (m *Model) isSubscribed(id SubscriptionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, found := m.idToEvent[id]
	return found
}

// On subscribes callback to the given event, usually created with ChangeEvent.
// It returns a SubscriptionID that can be used with Off.
func (m *Model) On(event string, callback Callback) SubscriptionID {
	if !strings.HasPrefix(event, ChangePrefix) {
		klog.Warningf("model %s: subscribing to event %q, which is never delivered: events are named %q", m.id, event, ChangeEvent("<attribute>"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextId
	m.nextId++
	m.idToEvent[id] = event
	m.subscriptions[event] = append(m.subscriptions[event], subscriptionRecord{id: id, callback: callback})
	return id
}

// OnAfter runs init and then subscribes callback to event, with no Set delivered in between:
// a concurrent Set either completes before init runs, or notifies callback after the
// subscription. init may read the model, but must not call Set.
//
// Like Set, it must not be called from within a callback of the same model.
func (m *Model) OnAfter(event string, init func(), callback Callback) SubscriptionID {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()
	if init != nil {
		init()
	}
	return m.On(event, callback)
}

// Off unsubscribes from events, using the SubscriptionID returned by On.
// Unknown or already released ids are ignored.
func (m *Model) Off(id SubscriptionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, found := m.idToEvent[id]
	if !found {
		return
	}
	delete(m.idToEvent, id)
	s := slices.DeleteFunc(m.subscriptions[event], func(r subscriptionRecord) bool {
		return r.id == id
	})
	if len(s) > 0 {
		m.subscriptions[event] = s
		return
	}
	delete(m.subscriptions, event)
}

// Subscribers returns the number of live subscriptions to event.
func (m *Model) Subscribers(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscriptions[event])
}
