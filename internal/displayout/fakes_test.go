package displayout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/1broseidon/displayout/internal/customres"
	"github.com/1broseidon/displayout/internal/node"
	"github.com/1broseidon/displayout/internal/platform"
	"github.com/1broseidon/displayout/internal/portname"
	"github.com/1broseidon/displayout/internal/present"
)

type opLog struct {
	ops []string
}

func (l *opLog) add(format string, args ...any) {
	l.ops = append(l.ops, fmt.Sprintf(format, args...))
}

// only returns the recorded operations whose name is in names, in order.
func (l *opLog) only(names ...string) []string {
	var out []string
	for _, op := range l.ops {
		if slices.Contains(names, op) {
			out = append(out, op)
		}
	}
	return out
}

type fakeWindowing struct {
	log       *opLog
	monitors  []platform.Monitor
	windows   []*fakeWindow
	createErr error
}

func (w *fakeWindowing) Monitors() ([]platform.Monitor, error) {
	return slices.Clone(w.monitors), nil
}

func (w *fakeWindowing) CreateWindow(opts platform.WindowOptions) (platform.Window, error) {
	if w.createErr != nil {
		return nil, w.createErr
	}
	win := &fakeWindow{
		log:       w.log,
		native:    uintptr(len(w.windows) + 1),
		bounds:    platform.Rect{X: 100, Y: 100, Width: opts.Width, Height: opts.Height},
		decorated: true,
	}
	w.windows = append(w.windows, win)
	return win, nil
}

func (w *fakeWindowing) removeMonitor(adapter string) {
	w.monitors = slices.DeleteFunc(w.monitors, func(m platform.Monitor) bool {
		return m.AdapterName == adapter
	})
}

type fakeWindow struct {
	log         *opLog
	native      uintptr
	bounds      platform.Rect
	decorated   bool
	shouldClose bool
	iconified   bool
	destroyed   bool
	positions   int
	restores    int
	pending     []platform.Event
	dispatcher  platform.Dispatcher
}

func (w *fakeWindow) Native() uintptr { return w.native }

func (w *fakeWindow) Bounds() (platform.Rect, error) {
	if w.destroyed {
		return platform.Rect{}, errors.New("window destroyed")
	}
	return w.bounds, nil
}

func (w *fakeWindow) SetPosition(x, y int) error {
	w.positions++
	w.move(x, y)
	return nil
}

func (w *fakeWindow) SetSize(width, height int) error {
	w.resize(width, height)
	return nil
}

// move and resize change geometry the way the window manager would and
// queue the matching notification.
func (w *fakeWindow) move(x, y int) {
	if w.bounds.X == x && w.bounds.Y == y {
		return
	}
	w.bounds.X, w.bounds.Y = x, y
	w.pending = append(w.pending, platform.MoveEvent{X: x, Y: y})
}

func (w *fakeWindow) resize(width, height int) {
	if w.bounds.Width == width && w.bounds.Height == height {
		return
	}
	w.bounds.Width, w.bounds.Height = width, height
	w.pending = append(w.pending, platform.ResizeEvent{Width: width, Height: height})
}

func (w *fakeWindow) SetDecorated(decorated bool) error {
	w.decorated = decorated
	return nil
}

func (w *fakeWindow) Restore() error {
	w.restores++
	if w.iconified {
		w.iconified = false
		w.pending = append(w.pending, platform.IconifyEvent{Iconified: false})
	}
	return nil
}

func (w *fakeWindow) ShouldClose() bool { return w.shouldClose }

func (w *fakeWindow) SetShouldClose(v bool) { w.shouldClose = v }

func (w *fakeWindow) emit(ev platform.Event) { w.pending = append(w.pending, ev) }

func (w *fakeWindow) iconify() {
	w.iconified = true
	w.emit(platform.IconifyEvent{Iconified: true})
}

func (w *fakeWindow) requestClose() { w.emit(platform.CloseEvent{}) }

func (w *fakeWindow) PollEvents() error {
	for len(w.pending) > 0 && !w.destroyed {
		ev := w.pending[0]
		w.pending = w.pending[1:]
		if _, ok := ev.(platform.CloseEvent); ok {
			w.shouldClose = true
		}
		w.dispatcher.Dispatch(ev)
	}
	return nil
}

func (w *fakeWindow) Subscribe(handler platform.EventHandler) func() {
	return w.dispatcher.Subscribe(handler)
}

func (w *fakeWindow) Destroy() {
	w.log.add("destroy-window")
	w.destroyed = true
	w.dispatcher.Reset()
}

type fakePresenter struct {
	log         *opLog
	next        uint64
	live        map[uint64]string
	frameCount  uint32
	failCreate  bool
	presentErrs []error
	created     []present.Extent
	modes       []present.PresentMode
	presented   int
	submitted   []present.Submission
}

func newFakePresenter(log *opLog) *fakePresenter {
	return &fakePresenter{log: log, live: map[uint64]string{}, frameCount: 2}
}

func (p *fakePresenter) alloc(kind string) uint64 {
	p.next++
	p.live[p.next] = kind
	return p.next
}

func (p *fakePresenter) release(h uint64, kind string) {
	if p.live[h] != kind {
		panic(fmt.Sprintf("release of unknown %s %d", kind, h))
	}
	delete(p.live, h)
}

func (p *fakePresenter) CreateSurface(native uintptr) (present.SurfaceHandle, error) {
	return present.SurfaceHandle(p.alloc("surface")), nil
}

func (p *fakePresenter) DestroySurface(s present.SurfaceHandle) {
	p.log.add("destroy-surface")
	p.release(uint64(s), "surface")
}

func (p *fakePresenter) CreateSwapchain(opts present.SwapchainOptions) (present.Swapchain, error) {
	if p.failCreate {
		return present.Swapchain{}, errors.New("surface lost")
	}
	p.created = append(p.created, opts.Extent)
	p.modes = append(p.modes, opts.Mode)
	sc := present.Swapchain{Handle: present.SwapchainHandle(p.alloc("swapchain")), FrameCount: p.frameCount}
	for range p.frameCount {
		sc.Images = append(sc.Images, present.Image{Extent: opts.Extent})
	}
	return sc, nil
}

func (p *fakePresenter) DestroySwapchain(sc present.SwapchainHandle) {
	p.log.add("destroy-swapchain")
	p.release(uint64(sc), "swapchain")
}

func (p *fakePresenter) CreateSemaphore() (present.SemaphoreHandle, error) {
	return present.SemaphoreHandle(p.alloc("semaphore")), nil
}

func (p *fakePresenter) DestroySemaphore(sem present.SemaphoreHandle) {
	p.release(uint64(sem), "semaphore")
}

func (p *fakePresenter) AcquireNextImage(sc present.SwapchainHandle, signal present.SemaphoreHandle) (uint32, error) {
	return uint32(p.presented) % p.frameCount, nil
}

func (p *fakePresenter) Submit(sub present.Submission) error {
	p.submitted = append(p.submitted, sub)
	return nil
}

func (p *fakePresenter) Present(sc present.SwapchainHandle, index uint32, wait present.SemaphoreHandle) error {
	if len(p.presentErrs) > 0 {
		err := p.presentErrs[0]
		p.presentErrs = p.presentErrs[1:]
		return err
	}
	p.presented++
	return nil
}

func (p *fakePresenter) Flush(ctx context.Context) error {
	p.log.add("flush")
	return nil
}

type fakeBackend struct {
	log       *opLog
	adapters  map[string]customres.PortID
	order     []string
	applied   map[customres.PortID]customres.Request
	applies   []customres.PortID
	reverts   []customres.PortID
	failApply bool
}

func (b *fakeBackend) known(port customres.PortID) bool {
	for _, p := range b.adapters {
		if p == port {
			return true
		}
	}
	return false
}

func (b *fakeBackend) Init() bool { return true }
func (b *fakeBackend) Shutdown()  {}

func (b *fakeBackend) SetResolutionAndRefreshRate(port customres.PortID, req customres.Request) bool {
	if b.failApply || !b.known(port) {
		return false
	}
	b.log.add("apply")
	b.applies = append(b.applies, port)
	b.applied[port] = req
	return true
}

func (b *fakeBackend) RevertResolution(port customres.PortID) bool {
	if _, ok := b.applied[port]; !ok {
		return false
	}
	b.log.add("revert")
	b.reverts = append(b.reverts, port)
	delete(b.applied, port)
	return true
}

func (b *fakeBackend) AdapterName(port customres.PortID, candidates []string) (string, bool) {
	for _, name := range candidates {
		if p, ok := b.adapters[name]; ok && p == port {
			return name, true
		}
	}
	return "", false
}

func (b *fakeBackend) ActivePortIDs() []customres.PortID {
	var out []customres.PortID
	for _, name := range b.order {
		out = append(out, b.adapters[name])
	}
	return out
}

func (b *fakeBackend) PortIDFromAdapterName(name string) (customres.PortID, bool) {
	p, ok := b.adapters[name]
	return p, ok
}

type fakeHost struct {
	scheduled int
	lists     map[string][]string
	pins      map[string][]byte
}

func newFakeHost() *fakeHost {
	return &fakeHost{lists: map[string][]string{}, pins: map[string][]byte{}}
}

func (h *fakeHost) ScheduleNode(_ uuid.UUID, count int) { h.scheduled += count }

func (h *fakeHost) UpdateStringList(name string, values []string) {
	h.lists[name] = slices.Clone(values)
}

func (h *fakeHost) SetPinValue(_ uuid.UUID, pin string, raw []byte) {
	h.pins[pin] = slices.Clone(raw)
}

var (
	leftPort  = customres.PortID{GPU: 1, Port: 0}
	rightPort = customres.PortID{GPU: 1, Port: 1}
)

type harness struct {
	log       *opLog
	windowing *fakeWindowing
	presenter *fakePresenter
	backend   *fakeBackend
	registry  *customres.Registry
	host      *fakeHost
	ctrl      *Controller
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	log := &opLog{}
	h := &harness{
		log: log,
		windowing: &fakeWindowing{log: log, monitors: []platform.Monitor{
			{
				AdapterName: "DP-1",
				Name:        "Left Panel",
				Bounds:      platform.Rect{X: 0, Y: 0, Width: 2560, Height: 1440},
				Mode:        platform.VideoMode{Width: 2560, Height: 1440, RefreshRate: 60},
			},
			{
				AdapterName: "HDMI-1",
				Name:        "Right Panel",
				Bounds:      platform.Rect{X: 2560, Y: 0, Width: 1920, Height: 1080},
				Mode:        platform.VideoMode{Width: 1920, Height: 1080, RefreshRate: 60},
			},
		}},
		presenter: newFakePresenter(log),
		backend: &fakeBackend{
			log:      log,
			adapters: map[string]customres.PortID{"DP-1": leftPort, "HDMI-1": rightPort},
			order:    []string{"DP-1", "HDMI-1"},
			applied:  map[customres.PortID]customres.Request{},
		},
		registry: customres.NewRegistry(),
		host:     newFakeHost(),
	}
	if !h.registry.Create(func() customres.Backend { return h.backend }) {
		t.Fatalf("registry.Create failed")
	}
	h.ctrl = New(Deps{
		Host:      h.host,
		Windowing: h.windowing,
		Presenter: h.presenter,
		Backends:  h.registry,
	}, cfg)
	return h
}

func (h *harness) window(t *testing.T) *fakeWindow {
	t.Helper()
	if len(h.windowing.windows) == 0 {
		t.Fatalf("no window created")
	}
	return h.windowing.windows[len(h.windowing.windows)-1]
}

func (h *harness) execute(t *testing.T) error {
	t.Helper()
	err := h.ctrl.Execute(context.Background(), node.ExecuteParams{Input: present.TestPattern(4, 4, 0)})
	h.checkInvariants(t)
	return err
}

func (h *harness) pin(t *testing.T, pin string, raw []byte) {
	t.Helper()
	h.ctrl.PinChanged(pin, raw)
	h.checkInvariants(t)
}

func (h *harness) call(t *testing.T, fn string) {
	t.Helper()
	if err := h.ctrl.CallFunction(fn); err != nil {
		t.Fatalf("CallFunction(%s): %v", fn, err)
	}
	h.checkInvariants(t)
}

func (h *harness) checkInvariants(t *testing.T) {
	t.Helper()
	s := h.ctrl.Snapshot()
	if s.CustomApplied && !s.Locked {
		t.Fatalf("custom resolution applied without a locked port: %+v", s)
	}
	if s.CustomApplied != (len(h.backend.applied) > 0) {
		t.Fatalf("controller applied=%v but backend holds %d overrides", s.CustomApplied, len(h.backend.applied))
	}
	if (h.ctrl.State() == StateDetached) != (h.ctrl.window == nil) {
		t.Fatalf("state %v disagrees with window presence", h.ctrl.State())
	}
}

func monitorPin(label string, port customres.PortID) []byte {
	return node.EncodeString(portname.Format(label, port))
}
