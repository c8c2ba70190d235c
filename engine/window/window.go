package window

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// MouseButton identifies a mouse button in drag callbacks.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Window is a native window that forwards input to callbacks and provides the surface the
// renderer draws into. Callbacks run on the goroutine that runs ProcessMessages.
type Window interface {
	// SetUpdateCallback sets a function run once per message loop iteration; nil disables it.
	SetUpdateCallback(callback func())

	// SetResizeCallback receives the new framebuffer size in pixels.
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback receives the vertical scroll delta, positive when scrolling up.
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback receives presses and repeats as common.Key* codes.
	SetKeyDownCallback(callback func(keyCode uint32))
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetDragCallbacks sets the drag handlers. begin fires on a button press, move fires on
	// cursor motion while that button is held, and end fires when it is released.
	//
	// Parameters:
	//   - begin: receives the button and the cursor position
	//   - move: receives the cursor position
	//   - end: receives the cursor position at release
	SetDragCallbacks(begin func(button MouseButton, x, y int32), move func(x, y int32), end func(x, y int32))

	// SetTitle queues a title change. It may be called from any goroutine.
	SetTitle(title string)

	// SurfaceDescriptor describes the native surface for wgpu, or is nil when no native
	// window is open.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	IsRunning() bool

	// Close destroys the native window.
	Close() error

	// ProcessMessages blocks in the event loop until the window closes.
	ProcessMessages()

	// Width and Height are the framebuffer size in pixels.
	Width() int
	Height() int
}

// engineWindow holds the size limits, callbacks and drag state shared by every platform.
type engineWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// width and height are the framebuffer size in pixels.
	width  int
	height int

	// native is the platform window, nil until NewWindow opens it
	native platform

	titleMu      sync.Mutex
	pendingTitle *string

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)

	onDragBegin func(button MouseButton, x, y int32)
	onDragMove  func(x, y int32)
	onDragEnd   func(x, y int32)

	// dragButton is the button that started the active drag, or -1 when not dragging.
	dragButton MouseButton
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured, visible window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newEngineWindow(options...)
	native, err := openGLFWWindow(w)
	if err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	w.native = native
	return w
}

var errNotOpen = errors.New("window is not open")

// platform is the native window behind an engineWindow. All methods run on the thread that
// opened it.
type platform interface {
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	// poll dispatches pending events and reports whether the window is still open.
	poll() bool
	open() bool
	setTitle(title string)
	close() error
}

// newEngineWindow applies defaults and options without creating the platform window.
func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:      "burnfade",
		maxWidth:   3840,
		maxHeight:  2160,
		minWidth:   320,
		minHeight:  240,
		width:      1280,
		height:     720,
		dragButton: -1,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = clamp(w.width, w.minWidth, w.maxWidth)
	w.height = clamp(w.height, w.minHeight, w.maxHeight)
	return w
}

func clamp(v, lo, hi int) int {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetDragCallbacks(begin func(button MouseButton, x, y int32), move func(x, y int32), end func(x, y int32)) {
	w.onDragBegin = begin
	w.onDragMove = move
	w.onDragEnd = end
}

func (w *engineWindow) SetTitle(title string) {
	w.titleMu.Lock()
	defer w.titleMu.Unlock()
	w.pendingTitle = &title
}

// takeTitle returns and clears the pending title.
func (w *engineWindow) takeTitle() (string, bool) {
	w.titleMu.Lock()
	defer w.titleMu.Unlock()
	if w.pendingTitle == nil {
		return "", false
	}
	t := *w.pendingTitle
	w.pendingTitle = nil
	w.title = t
	return t, true
}

// mouseButton turns button presses and releases into drag begin/end events.
// Only the button that started a drag can end it.
//
// Parameters:
//   - button: the button that changed state
//   - pressed: true on press, false on release
//   - x, y: the cursor position
func (w *engineWindow) mouseButton(button MouseButton, pressed bool, x, y int32) {
	switch {
	case pressed && w.dragButton < 0:
		w.dragButton = button
		if w.onDragBegin != nil {
			w.onDragBegin(button, x, y)
		}
	case !pressed && w.dragButton == button:
		w.dragButton = -1
		if w.onDragEnd != nil {
			w.onDragEnd(x, y)
		}
	}
}

// cursorMoved forwards cursor movement while a drag is active.
func (w *engineWindow) cursorMoved(x, y int32) {
	if w.dragButton < 0 || w.onDragMove == nil {
		return
	}
	w.onDragMove(x, y)
}

// framebufferResized records the new size and notifies the resize callback.
func (w *engineWindow) framebufferResized(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.native == nil {
		return nil
	}
	return w.native.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.native != nil && w.native.open()
}

func (w *engineWindow) Close() error {
	if w.native == nil {
		return errNotOpen
	}
	return w.native.close()
}

// ProcessMessages runs the event loop until the window closes. Each iteration dispatches
// events, applies a title set from another goroutine and then runs the update callback.
func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !w.native.poll() {
			break
		}
		if title, ok := w.takeTitle(); ok {
			w.native.setTitle(title)
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
