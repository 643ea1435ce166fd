package mem

import "strings"

// Capabilities is a bit set describing the optional behaviors a memory
// provider implements. A provider's capability set is fixed at construction
// and never changes afterwards.
type Capabilities uint32

const (
	// CapRequestedLayout: GetLayout(LayoutRequested, p) reports the layout
	// originally passed to Allocate for p.
	CapRequestedLayout Capabilities = 1 << iota

	// CapUsableLayout: GetLayout(LayoutUsable, p) reports how much of the
	// allocation may be used without corrupting provider state.
	CapUsableLayout

	// CapAllocatedLayout: GetLayout(LayoutAllocated, p) reports the total
	// reservation for p, including provider metadata overhead.
	CapAllocatedLayout

	// CapRecognizes: Recognizes(p) gives a meaningful answer rather than a
	// blanket false.
	CapRecognizes

	// CapSkipsDispose: the provider reclaims memory wholesale, so
	// DestroyAndRelease must not run element Dispose methods.
	CapSkipsDispose
)

// Has reports whether every bit of c2 is set in c.
func (c Capabilities) Has(c2 Capabilities) bool {
	return c&c2 == c2
}

// Union returns the capabilities present in either set.
func (c Capabilities) Union(c2 Capabilities) Capabilities {
	return c | c2
}

// Intersect returns the capabilities present in both sets.
func (c Capabilities) Intersect(c2 Capabilities) Capabilities {
	return c & c2
}

// Xor returns the capabilities present in exactly one of the two sets.
func (c Capabilities) Xor(c2 Capabilities) Capabilities {
	return c ^ c2
}

var capNames = []struct {
	bit  Capabilities
	name string
}{
	{CapRequestedLayout, "requested-layout"},
	{CapUsableLayout, "usable-layout"},
	{CapAllocatedLayout, "allocated-layout"},
	{CapRecognizes, "recognizes"},
	{CapSkipsDispose, "skips-dispose"},
}

// String renders the set as a |-joined list of capability names.
func (c Capabilities) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, n := range capNames {
		if c.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
