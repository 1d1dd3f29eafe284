package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowConsumesCapacity(t *testing.T) {
	l := New()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("s1", 3, 0))
	}
	assert.False(t, l.Allow("s1", 3, 0))
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()

	assert.True(t, l.Allow("s1", 1, 0))
	assert.False(t, l.Allow("s1", 1, 0))
	assert.True(t, l.Allow("s2", 1, 0))
}
