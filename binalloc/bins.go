package binalloc

import "github.com/vela-alloc/binalloc/sizeclass"

// Bins is the ordered aggregation of one Bin per configured size class.
// The backing array is fixed-size so a Bins value can be
// placement-constructed directly onto raw page-allocator memory (the
// Thread Cache's bucket array) rather than needing its own separate
// heap-allocated slice; a shorter size-class table (e.g.
// sizeclass.Reduced) simply leaves the tail entries of the array unused.
type Bins struct {
	classes []sizeclass.Class
	bins    [sizeclass.NumClasses]Bin
}

// NewBins builds a Bins over the given size-class table. Pass
// sizeclass.Classes for the full public profile or sizeclass.Reduced for
// the {4...4096} profile.
func NewBins(classes []sizeclass.Class) *Bins {
	bs := &Bins{}
	bs.Init(classes)
	return bs
}

// Init (re-)initializes bs in place over the given size-class table.
// Safe to call on a Bins value that already lives inside raw
// page-allocator memory, since it only assigns into fields that already
// exist at a fixed offset.
func (bs *Bins) Init(classes []sizeclass.Class) {
	bs.classes = classes
	for i, c := range classes {
		bs.bins[i].Init(c)
	}
}

// Classes reports the size-class table this Bins was built over.
func (bs *Bins) Classes() []sizeclass.Class {
	return bs.classes
}

// BinFor returns the Bin serving paddedSize, and false if paddedSize
// exceeds every configured class (the caller must go to the page
// allocator directly).
func (bs *Bins) BinFor(paddedSize uintptr) (*Bin, bool) {
	idx, ok := sizeclass.ClassFor(bs.classes, paddedSize)
	if !ok {
		return nil, false
	}
	return &bs.bins[idx], true
}

// MaxClassSize is the largest size class this Bins serves; padded sizes
// above this go to the page allocator.
func (bs *Bins) MaxClassSize() uintptr {
	if len(bs.classes) == 0 {
		return 0
	}
	return bs.classes[len(bs.classes)-1].Size
}
