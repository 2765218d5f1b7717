package viewport

import (
	"time"

	"github.com/dd0wney/cluso-netgraph/pkg/visualization"
)

// EventKind names a controller notification. The value doubles as the
// topic when events are published on a socket.
type EventKind string

const (
	SelectionChanged EventKind = "selection.changed"
	HoverChanged     EventKind = "hover.changed"
	LayoutUpdated    EventKind = "layout.updated"
	LayoutFailed     EventKind = "layout.failed"
	ViewReset        EventKind = "view.reset"
)

// Event is delivered to observers after the controller state has changed.
type Event struct {
	Kind      EventKind            `json:"kind"`
	SessionID string               `json:"session_id"`
	NodeID    string               `json:"node_id,omitempty"`
	Selected  []string             `json:"selected"`
	Hovered   string               `json:"hovered,omitempty"`
	Trigger   string               `json:"trigger,omitempty"`
	Stats     *visualization.Stats `json:"stats,omitempty"`
	Error     string               `json:"error,omitempty"`
	At        time.Time            `json:"at"`
}

type observer struct {
	id int
	fn func(Event)
}

// observers is an ordered callback list. Delivery is synchronous and in
// registration order.
type observers struct {
	next int
	list []observer
}

func (o *observers) add(fn func(Event)) func() {
	o.next++
	id := o.next
	o.list = append(o.list, observer{id: id, fn: fn})
	return func() { o.remove(id) }
}

func (o *observers) remove(id int) {
	for i, ob := range o.list {
		if ob.id == id {
			o.list = append(o.list[:i:i], o.list[i+1:]...)
			return
		}
	}
}

func (o *observers) emit(e Event) {
	// Copy so observers may unsubscribe while being notified
	list := append([]observer(nil), o.list...)
	for _, ob := range list {
		ob.fn(e)
	}
}
