package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow is the platform implementation backed by GLFW.
type glfwWindow struct {
	handle *glfw.Window
	closed bool
}

var _ platform = &glfwWindow{}

var glfwMouseButtons = map[glfw.MouseButton]MouseButton{
	glfw.MouseButtonLeft:   MouseButtonLeft,
	glfw.MouseButtonRight:  MouseButtonRight,
	glfw.MouseButtonMiddle: MouseButtonMiddle,
}

// openGLFWWindow locks the calling goroutine to its OS thread, creates a GLFW window without a
// client API and routes its input events into w. The framebuffer size GLFW reports replaces
// the requested size, since they differ on high-DPI displays.
//
// Parameters:
//   - w: the window receiving events
//
// Returns:
//   - *glfwWindow: the open window
//   - error: an error if GLFW cannot initialize or create the window
func openGLFWWindow(w *engineWindow) (*glfwWindow, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw create window: %w", err)
	}
	handle.SetSizeLimits(w.minWidth, w.minHeight, dontCareIfUnset(w.maxWidth), dontCareIfUnset(w.maxHeight))

	gw := &glfwWindow{handle: handle}
	gw.route(w)

	w.width, w.height = handle.GetFramebufferSize()
	return gw, nil
}

// route installs the GLFW callbacks that forward input to w. Escape closes the window
// instead of reaching the key callbacks.
func (g *glfwWindow) route(w *engineWindow) {
	g.handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape {
			if action == glfw.Press {
				g.handle.SetShouldClose(true)
			}
			return
		}
		if action == glfw.Release {
			if w.onKeyUp != nil {
				w.onKeyUp(uint32(key))
			}
		} else if w.onKeyDown != nil {
			w.onKeyDown(uint32(key))
		}
	})

	g.handle.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		if w.onScroll != nil {
			w.onScroll(float32(dy))
		}
	})

	g.handle.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		mb, ok := glfwMouseButtons[button]
		if !ok || action == glfw.Repeat {
			return
		}
		x, y := win.GetCursorPos()
		w.mouseButton(mb, action == glfw.Press, int32(x), int32(y))
	})

	g.handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.cursorMoved(int32(x), int32(y))
	})

	g.handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.framebufferResized(width, height)
	})
}

func dontCareIfUnset(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

// surfaceDescriptor comes from the wgpuglfw bridge, which picks the native handle type for
// the running platform.
func (g *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	if g.closed {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(g.handle)
}

func (g *glfwWindow) open() bool {
	return !g.closed && !g.handle.ShouldClose()
}

func (g *glfwWindow) poll() bool {
	glfw.PollEvents()
	return g.open()
}

func (g *glfwWindow) setTitle(title string) {
	if !g.closed {
		g.handle.SetTitle(title)
	}
}

// close destroys the window and terminates GLFW. Closing twice is a no-op.
func (g *glfwWindow) close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	g.handle.Destroy()
	glfw.Terminate()
	return nil
}
