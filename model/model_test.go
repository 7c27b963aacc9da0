package model

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSet(t *testing.T) {
	m := New(map[string]any{"svg": "<rect/>", "count": 3})
	assert.Equal(t, "<rect/>", m.String("svg"))
	assert.Equal(t, 3, Value[int](m, "count"))
	assert.Equal(t, "", m.String("count"), "wrong type yields the zero value")
	assert.Nil(t, m.Get("missing"))
	assert.Equal(t, []string{"count", "svg"}, m.Attributes())
	assert.NotEqual(t, New(nil).Id(), m.Id())
}

func TestChangeNotifications(t *testing.T) {
	m := New(nil)
	var got []string
	id := m.On(ChangeEvent("svg"), func(m2 *Model, attribute string, value any) {
		assert.Same(t, m, m2)
		assert.Equal(t, "svg", attribute)
		got = append(got, value.(string))
	})
	assert.Equal(t, 1, m.Subscribers("change:svg"))

	m.Set("svg", "<rect/>")
	m.Set("svg", "<rect/>") // Same value: no notification.
	m.Set("other", "x")     // Other attribute: no notification.
	m.Set("svg", "")
	assert.Equal(t, []string{"<rect/>", ""}, got)

	m.Off(id)
	m.Off(id) // Releasing twice is a no-op.
	assert.Equal(t, 0, m.Subscribers("change:svg"))
	m.Set("svg", "<line/>")
	assert.Len(t, got, 2)
	assert.Equal(t, "<line/>", m.String("svg"))
}

func TestUnsubscribeDuringDelivery(t *testing.T) {
	m := New(nil)
	var calls []int
	var second SubscriptionID
	m.On(ChangeEvent("a"), func(*Model, string, any) {
		calls = append(calls, 0)
		m.Off(second)
	})
	second = m.On(ChangeEvent("a"), func(*Model, string, any) {
		calls = append(calls, 1)
	})
	m.Set("a", 1)
	assert.Equal(t, []int{0}, calls)
}

func TestConcurrentSet(t *testing.T) {
	m := New(nil)
	var mu sync.Mutex
	running, count := 0, 0
	m.On(ChangeEvent("v"), func(*Model, string, any) {
		mu.Lock()
		running++
		assert.Equal(t, 1, running, "deliveries must not overlap")
		mu.Unlock()

		mu.Lock()
		running--
		count++
		mu.Unlock()
	})
	var wg sync.WaitGroup
	for ii := 0; ii < 20; ii++ {
		wg.Add(1)
		go func(ii int) {
			defer wg.Done()
			m.Set("v", fmt.Sprintf("value-%d", ii))
		}(ii)
	}
	wg.Wait()
	assert.Equal(t, 20, count)
}

func TestOnAfter(t *testing.T) {
	m := New(map[string]any{"svg": "<rect/>"})
	var seen []any
	setDone := make(chan struct{})
	id := m.OnAfter(ChangeEvent("svg"), func() {
		setStarted := make(chan struct{})
		go func() {
			close(setStarted)
			m.Set("svg", "<line/>")
			close(setDone)
		}()
		<-setStarted
		time.Sleep(20 * time.Millisecond)
		select {
		case <-setDone:
			assert.Fail(t, "Set completed while OnAfter was initializing")
		default:
		}
		assert.Equal(t, "<rect/>", m.String("svg"))
	}, func(_ *Model, _ string, value any) {
		seen = append(seen, value)
	})
	<-setDone
	assert.Equal(t, []any{"<line/>"}, seen, "change during init must be delivered to the new subscriber")
	m.Off(id)
	assert.Equal(t, 0, m.Subscribers(ChangeEvent("svg")))

	// nil init is a plain subscription.
	m.OnAfter(ChangeEvent("svg"), nil, func(*Model, string, any) {})
	assert.Equal(t, 1, m.Subscribers(ChangeEvent("svg")))
}
