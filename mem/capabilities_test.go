package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilities_Has(t *testing.T) {
	c := CapRequestedLayout | CapRecognizes

	assert.True(t, c.Has(CapRequestedLayout))
	assert.True(t, c.Has(CapRecognizes))
	assert.True(t, c.Has(CapRequestedLayout|CapRecognizes))
	assert.False(t, c.Has(CapUsableLayout))
	assert.False(t, c.Has(CapRecognizes|CapSkipsDispose), "Has requires every bit")
}

func TestCapabilities_SetOperations(t *testing.T) {
	a := CapRequestedLayout | CapUsableLayout
	b := CapUsableLayout | CapRecognizes

	assert.Equal(t, CapRequestedLayout|CapUsableLayout|CapRecognizes, a.Union(b))
	assert.Equal(t, CapUsableLayout, a.Intersect(b))
	assert.Equal(t, CapRequestedLayout|CapRecognizes, a.Xor(b))
}

func TestCapabilities_String(t *testing.T) {
	assert.Equal(t, "none", Capabilities(0).String())
	assert.Equal(t, "requested-layout", CapRequestedLayout.String())
	assert.Equal(t, "usable-layout|skips-dispose", (CapUsableLayout | CapSkipsDispose).String())
}
