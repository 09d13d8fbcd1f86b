// Package sizeclass holds the fixed size-class table shared by binalloc
// and allocator. The table is data, not per-class generated types: Go has
// no union type to carve a distinct struct per class, so one Class value
// parameterizes the one generic Bin implementation instead.
package sizeclass

// Size is the dispatch boundary for one size class: alloc(padded_size)
// routes to the smallest class whose Size >= padded_size.
//
// Stride is the number of bytes physically advanced per slot when a Bin
// carves a chunk, and the number of bytes a free slot must have available
// to hold its free-list link. For every class except the smallest, Stride
// equals Size. The 4-byte class is the exception: a free slot of that
// class must still hold a full pointer-sized link, so its Stride is 8
// even though requests of up to 4 bytes are routed to it.
type Class struct {
	Size  uintptr
	Align uintptr
}

// PointerSize is the width of a free-list link.
const PointerSize = 8

// Stride is the physical per-slot advance for this class.
func (c Class) Stride() uintptr {
	if c.Size < PointerSize {
		return PointerSize
	}
	return c.Size
}

// ChunkSize is the size of the page-allocator-backed chunk a Bin carves
// slots from.
const ChunkSize = 0x10000

// MaxAlign is the alignment cap enforced by the top-level allocator.
const MaxAlign = 0x1000

// classAlignCap is the page-alignment ceiling imposed on classes
// >= 8 KiB: those classes are capped at page alignment rather than
// matching their own size.
const classAlignCap = MaxAlign

// NumClasses is len(Classes) as a compile-time constant, so that Bins can
// embed a fixed-size [NumClasses]Bin array (placement-constructible onto
// raw page-allocator memory for threadcache's bucket array) instead of a
// heap-backed slice.
const NumClasses = 15

// Classes is the full public size-class table:
// {4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768, 65536}.
var Classes = buildClasses(ChunkSize + 1)

// Reduced is the {4...4096} profile for deployments that don't need the
// larger classes (e.g. an embedded allocator.WithoutThreadCache setup
// where every chunk should fit a single page-allocator mapping).
var Reduced = buildClasses(MaxAlign + 1)

func buildClasses(ceiling uintptr) []Class {
	var out []Class
	for size := uintptr(4); size <= 65536 && size < ceiling; size *= 2 {
		align := size
		if align == 4 {
			align = 8 // smallest class aligned to 8 so a free slot can hold a pointer-sized link
		}
		if align > classAlignCap {
			align = classAlignCap
		}
		out = append(out, Class{Size: size, Align: align})
	}
	return out
}

// ClassFor returns the smallest class whose Size is >= paddedSize, and
// false if paddedSize exceeds every small-object class (the caller must
// then go to the page allocator directly).
func ClassFor(classes []Class, paddedSize uintptr) (int, bool) {
	for i, c := range classes {
		if c.Size >= paddedSize {
			return i, true
		}
	}
	return 0, false
}
