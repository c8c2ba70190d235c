package bind_group_provider

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	errNoVertexBuffer = errors.New("no vertex buffer")
	errNoIndexBuffer  = errors.New("no index buffer")
	errNoIndices      = errors.New("index count is zero")
)

// BindGroupProvider carries the GPU objects one component binds: the buffers and bind group of
// a single @group, plus vertex and index buffers when the component is a mesh.
//
// The renderer fills a provider through InitBindGroup or InitMeshBuffers. Components only stage
// BufferWrite values against its bindings.
type BindGroupProvider interface {
	// Label is the debug label used for GPU objects and logs.
	Label() string

	BindGroup() *wgpu.BindGroup
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at binding, or nil.
	Buffer(binding int) *wgpu.Buffer

	VertexBuffer() *wgpu.Buffer
	IndexBuffer() *wgpu.Buffer
	IndexCount() int

	// Drawable reports whether an indexed draw can be recorded from this provider.
	//
	// Returns:
	//   - error: names the first missing piece, or nil
	Drawable() error

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetVertexBuffer stores a vertex buffer this provider owns and releases.
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetSharedVertexBuffer stores a vertex buffer owned elsewhere, such as a compute output
	// buffer. Release detaches it without freeing it.
	SetSharedVertexBuffer(buf *wgpu.Buffer)

	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)

	// Release frees every GPU object the provider owns and clears its references.
	Release()
}

type bindGroupProvider struct {
	label string

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer

	vertexBuffer *wgpu.Buffer
	// borrowed is set when vertexBuffer belongs to another provider
	borrowed    bool
	indexBuffer *wgpu.Buffer
	indexCount  int
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: debug label used in GPU object labels and logs
//   - options: provider options
//
// Returns:
//   - BindGroupProvider: the provider, holding no GPU objects yet
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string                          { return p.label }
func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup             { return p.bindGroup }
func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout { return p.bindGroupLayout }
func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer        { return p.buffers[binding] }
func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer             { return p.vertexBuffer }
func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer              { return p.indexBuffer }
func (p *bindGroupProvider) IndexCount() int                        { return p.indexCount }

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup)              { p.bindGroup = bg }
func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) { p.bindGroupLayout = bgl }
func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer)              { p.indexBuffer = buf }
func (p *bindGroupProvider) SetIndexCount(count int)                      { p.indexCount = count }

func (p *bindGroupProvider) Drawable() error {
	var err error
	switch {
	case p.vertexBuffer == nil:
		err = errNoVertexBuffer
	case p.indexBuffer == nil:
		err = errNoIndexBuffer
	case p.indexCount <= 0:
		err = errNoIndices
	default:
		return nil
	}
	return fmt.Errorf("mesh provider %q: %w", p.label, err)
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.buffers == nil {
		p.buffers = make(map[int]*wgpu.Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer, p.borrowed = buf, false
}

func (p *bindGroupProvider) SetSharedVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer, p.borrowed = buf, true
}

// Release frees the bind group before the buffers it references.
func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	for binding, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, binding)
	}
	if p.vertexBuffer != nil && !p.borrowed {
		p.vertexBuffer.Release()
	}
	p.vertexBuffer, p.borrowed = nil, false
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
