// Package layout computes the size and member offsets of a structure
// assembled at runtime by appending members of known size and alignment.
// The kv containers use it to pack a node's key and value payloads into
// a single allocator block.
package layout

// Layout is a run-time memory layout: the size of an object and the
// alignment its first byte must satisfy.
type Layout struct {
	Size      uintptr
	Alignment uintptr
}

// Empty returns the layout of a zero-sized object.
func Empty() Layout {
	return Layout{Size: 0, Alignment: 1}
}

// Of returns the layout for a member of the given size and alignment.
func Of(size, alignment uintptr) Layout {
	return Layout{Size: size, Alignment: alignment}
}

// Add extends the layout by one member and returns the offset at which
// the member starts. The current size is rounded up to a multiple of
// the member alignment, then extended by the member size; the overall
// alignment is promoted to the larger of the two. A zero member
// alignment is treated as 1.
func (l *Layout) Add(member Layout) uintptr {
	align := member.Alignment
	if align == 0 {
		align = 1
	}

	offset := (l.Size / align) * align
	if offset < l.Size {
		offset += align
	}

	l.Size = offset + member.Size
	if align > l.Alignment {
		l.Alignment = align
	}
	return offset
}

// Pad rounds the size up to a multiple of the overall alignment and
// returns the new size. A zero alignment is treated as 1.
func (l *Layout) Pad() uintptr {
	align := l.Alignment
	if align == 0 {
		align = 1
	}

	size := (l.Size / align) * align
	if size < l.Size {
		size += align
	}

	l.Size = size
	return size
}
