// Package vm provides frame management for the PArIR virtual machine.
package vm

// Frame is one activation record of slots. Blocks open frames whose
// parent is the enclosing frame; calls open frames whose parent is the
// global frame. Addresses [i:l] resolve by following l parent links.
type Frame struct {
	slots  []float64
	parent *Frame
}

// NewFrame creates a frame of size zeroed slots.
func NewFrame(size int, parent *Frame) *Frame {
	return &Frame{
		slots:  make([]float64, size),
		parent: parent,
	}
}

// Len returns the number of slots.
func (f *Frame) Len() int { return len(f.slots) }

// Parent returns the static parent, nil for the global frame.
func (f *Frame) Parent() *Frame { return f.parent }

// Grow adds n zeroed slots.
func (f *Frame) Grow(n int) {
	f.slots = append(f.slots, make([]float64, n)...)
}

// up follows level parent links.
func (f *Frame) up(level int) (*Frame, *RuntimeError) {
	frame := f
	for range level {
		if frame.parent == nil {
			return nil, NewRuntimeError(ErrorIndexOutOfRange, "access level %d exceeds frame depth", level)
		}
		frame = frame.parent
	}
	return frame, nil
}

// Load reads slot index of the frame level links up.
func (f *Frame) Load(index, level int) (float64, *RuntimeError) {
	frame, err := f.up(level)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(frame.slots) {
		return 0, NewRuntimeError(ErrorIndexOutOfRange, "slot %d out of range (frame size %d)", index, len(frame.slots))
	}
	return frame.slots[index], nil
}

// Store writes slot index of the frame level links up.
func (f *Frame) Store(index, level int, value float64) *RuntimeError {
	frame, err := f.up(level)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(frame.slots) {
		return NewRuntimeError(ErrorIndexOutOfRange, "slot %d out of range (frame size %d)", index, len(frame.slots))
	}
	frame.slots[index] = value
	return nil
}
