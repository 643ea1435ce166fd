//go:build !memkitdebug

package ref

// checkCounts is a no-op outside memkitdebug builds.
func (c *controlBlock) checkCounts() {}
