package platform

// Event is a window-system notification for one window.
type Event interface {
	isEvent()
}

// ResizeEvent reports a new window size.
type ResizeEvent struct {
	Width  int
	Height int
}

// MoveEvent reports a new window position.
type MoveEvent struct {
	X int
	Y int
}

// IconifyEvent reports the window being minimised or restored.
type IconifyEvent struct {
	Iconified bool
}

// CloseEvent reports a close request. The window's should-close flag is
// already set when handlers run; a handler may clear it to veto the close.
type CloseEvent struct{}

func (ResizeEvent) isEvent()  {}
func (MoveEvent) isEvent()    {}
func (IconifyEvent) isEvent() {}
func (CloseEvent) isEvent()   {}

// EventHandler receives window events.
type EventHandler func(ev Event)

// Dispatcher fans events out to subscribed handlers. The zero value is ready
// to use. It is not safe for concurrent use.
type Dispatcher struct {
	next     int
	handlers map[int]EventHandler
	order    []int
}

// Subscribe adds handler and returns its removal function.
func (d *Dispatcher) Subscribe(handler EventHandler) func() {
	if d.handlers == nil {
		d.handlers = make(map[int]EventHandler)
	}
	id := d.next
	d.next++
	d.handlers[id] = handler
	d.order = append(d.order, id)
	return func() {
		delete(d.handlers, id)
		for i, v := range d.order {
			if v == id {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch delivers ev to every handler in subscription order.
func (d *Dispatcher) Dispatch(ev Event) {
	ids := append([]int(nil), d.order...)
	for _, id := range ids {
		if h, ok := d.handlers[id]; ok {
			h(ev)
		}
	}
}

// Reset removes every handler.
func (d *Dispatcher) Reset() {
	d.handlers = nil
	d.order = nil
}
