//go:build memkitdebug

package ref

import "fmt"

// checkCounts asserts the weak >= shared invariant. Debug builds only;
// release builds compile this to nothing.
func (c *controlBlock) checkCounts() {
	v := c.counts.Load()
	if weakOf(v) < sharedOf(v) {
		panic(fmt.Sprintf("ref: counter invariant violated: weak=%d shared=%d",
			weakOf(v), sharedOf(v)))
	}
}
