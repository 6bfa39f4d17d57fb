package x11

import (
	"context"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/displayout/internal/present"
)

// putImageHeader is the fixed size of a PutImage request in bytes.
const putImageHeader = 24

// swapchainImages is the image count of every software swapchain.
const swapchainImages = 2

// Presenter is a software presenter: swapchain images live in client memory
// and are uploaded to the window with PutImage.
type Presenter struct {
	conn       *Connection
	next       uint64
	surfaces   map[present.SurfaceHandle]*surface
	swapchains map[present.SwapchainHandle]*swapchain
	semaphores map[present.SemaphoreHandle]struct{}
}

type surface struct {
	window xproto.Window
	gc     xproto.Gcontext
}

type swapchain struct {
	surface *surface
	extent  present.Extent
	mode    present.PresentMode
	images  [][]byte
	next    uint32
}

var _ present.Presenter = (*Presenter)(nil)

// NewPresenter returns a presenter drawing through conn.
func NewPresenter(conn *Connection) *Presenter {
	return &Presenter{
		conn:       conn,
		surfaces:   make(map[present.SurfaceHandle]*surface),
		swapchains: make(map[present.SwapchainHandle]*swapchain),
		semaphores: make(map[present.SemaphoreHandle]struct{}),
	}
}

func (p *Presenter) handle() uint64 {
	p.next++
	return p.next
}

// CreateSurface binds a graphics context to the window id native.
func (p *Presenter) CreateSurface(native uintptr) (present.SurfaceHandle, error) {
	conn := p.conn.XUtil.Conn()
	win := xproto.Window(native)
	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate gc: %w", err)
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(win), 0, nil).Check(); err != nil {
		return 0, fmt.Errorf("failed to create gc: %w", err)
	}
	h := present.SurfaceHandle(p.handle())
	p.surfaces[h] = &surface{window: win, gc: gc}
	return h, nil
}

func (p *Presenter) DestroySurface(h present.SurfaceHandle) {
	s, ok := p.surfaces[h]
	if !ok {
		return
	}
	xproto.FreeGC(p.conn.XUtil.Conn(), s.gc)
	delete(p.surfaces, h)
}

func (p *Presenter) CreateSwapchain(opts present.SwapchainOptions) (present.Swapchain, error) {
	s, ok := p.surfaces[opts.Surface]
	if !ok {
		return present.Swapchain{}, fmt.Errorf("unknown surface %d", opts.Surface)
	}
	if opts.Extent.Width == 0 || opts.Extent.Height == 0 {
		return present.Swapchain{}, fmt.Errorf("invalid extent %dx%d", opts.Extent.Width, opts.Extent.Height)
	}
	sc := &swapchain{surface: s, extent: opts.Extent, mode: opts.Mode}
	h := present.SwapchainHandle(p.handle())
	out := present.Swapchain{Handle: h, FrameCount: swapchainImages}
	for range swapchainImages {
		sc.images = append(sc.images, make([]byte, int(opts.Extent.Width)*int(opts.Extent.Height)*4))
		out.Images = append(out.Images, present.Image{Handle: p.handle(), Extent: opts.Extent})
	}
	p.swapchains[h] = sc
	return out, nil
}

func (p *Presenter) DestroySwapchain(h present.SwapchainHandle) {
	delete(p.swapchains, h)
}

// Semaphores order nothing here: every call completes before it returns.
func (p *Presenter) CreateSemaphore() (present.SemaphoreHandle, error) {
	h := present.SemaphoreHandle(p.handle())
	p.semaphores[h] = struct{}{}
	return h, nil
}

func (p *Presenter) DestroySemaphore(h present.SemaphoreHandle) {
	delete(p.semaphores, h)
}

func (p *Presenter) AcquireNextImage(h present.SwapchainHandle, _ present.SemaphoreHandle) (uint32, error) {
	sc, ok := p.swapchains[h]
	if !ok {
		return 0, fmt.Errorf("unknown swapchain %d", h)
	}
	idx := sc.next
	sc.next = (sc.next + 1) % uint32(len(sc.images))
	return idx, nil
}

// Submit copies the source texture into the target image, scaling with
// nearest-neighbour sampling. A texture without host pixels clears the image.
func (p *Presenter) Submit(sub present.Submission) error {
	sc, ok := p.swapchains[sub.Swapchain]
	if !ok {
		return fmt.Errorf("unknown swapchain %d", sub.Swapchain)
	}
	if int(sub.Target) >= len(sc.images) {
		return fmt.Errorf("image %d out of range", sub.Target)
	}
	blit(sc.images[sub.Target], int(sc.extent.Width), int(sc.extent.Height), sub.Source)
	return nil
}

// Present uploads the image to the window. It reports ErrOutOfDate when the
// window size no longer matches the swapchain.
func (p *Presenter) Present(h present.SwapchainHandle, index uint32, _ present.SemaphoreHandle) error {
	sc, ok := p.swapchains[h]
	if !ok {
		return fmt.Errorf("unknown swapchain %d", h)
	}
	conn := p.conn.XUtil.Conn()
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(sc.surface.window)).Reply()
	if err != nil {
		return fmt.Errorf("%w: %v", present.ErrOutOfDate, err)
	}
	if uint32(geom.Width) != sc.extent.Width || uint32(geom.Height) != sc.extent.Height {
		return present.ErrOutOfDate
	}

	width := int(sc.extent.Width)
	height := int(sc.extent.Height)
	maxBytes := int(p.conn.XUtil.Setup().MaximumRequestLength)*4 - putImageHeader
	rows := stripRows(width, maxBytes)
	depth := p.conn.XUtil.Screen().RootDepth
	img := sc.images[index]
	for y := 0; y < height; y += rows {
		n := min(rows, height-y)
		xproto.PutImage(conn, xproto.ImageFormatZPixmap, xproto.Drawable(sc.surface.window), sc.surface.gc,
			uint16(width), uint16(n), 0, int16(y), 0, depth, img[y*width*4:(y+n)*width*4])
	}
	if sc.paced() {
		if _, err := xproto.GetInputFocus(conn).Reply(); err != nil {
			return fmt.Errorf("wait for present: %w", err)
		}
	}
	return nil
}

// paced reports whether Present blocks until the server has consumed the
// frame, so that at most one frame is queued.
func (sc *swapchain) paced() bool {
	return sc.mode == present.PresentModeFIFO
}

// Flush waits for the server to process every request sent so far.
func (p *Presenter) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := xproto.GetInputFocus(p.conn.XUtil.Conn()).Reply()
	return err
}

// stripRows is the number of rows of a width-pixel BGRA image that fit in a
// request of maxBytes payload.
func stripRows(width, maxBytes int) int {
	if width <= 0 {
		return 1
	}
	return max(1, maxBytes/(width*4))
}

// blit scales src into the tightly packed BGRA buffer dst of size w x h.
func blit(dst []byte, w, h int, src present.Texture) {
	sw, sh := int(src.Width), int(src.Height)
	if len(src.Pixels) < sw*sh*4 || sw == 0 || sh == 0 {
		clear(dst)
		return
	}
	for y := range h {
		sy := y * sh / h
		row := dst[y*w*4 : (y+1)*w*4]
		srow := src.Pixels[sy*sw*4 : (sy+1)*sw*4]
		if sw == w {
			copy(row, srow)
			continue
		}
		for x := range w {
			sx := x * sw / w
			copy(row[x*4:x*4+4], srow[sx*4:sx*4+4])
		}
	}
}
