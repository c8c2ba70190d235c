package bind_group_provider

// BufferWrite is one queued upload into the buffer at Binding of Provider, starting Offset
// bytes in. Effects and the camera stage these each frame; the renderer flushes them in
// order before any compute dispatch.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Size returns the number of bytes the write uploads.
func (w BufferWrite) Size() int {
	return len(w.Data)
}

// End returns the byte offset one past the last byte written.
func (w BufferWrite) End() uint64 {
	return w.Offset + uint64(len(w.Data))
}

// Fits reports whether the write lies inside a buffer of the given capacity.
//
// Parameters:
//   - capacity: the destination buffer size in bytes
//
// Returns:
//   - bool: true if the whole write is in bounds
func (w BufferWrite) Fits(capacity uint64) bool {
	return w.End() <= capacity
}
