package entropy_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/librescoot/serlink/pkg/entropy"
)

func TestConnIDIsFourBytes(t *testing.T) {
	src := entropy.New(rand.New(rand.NewSource(1)))
	id := src.ConnID()
	assert.Len(t, id, 4)
}

func TestPayloadLengthWithinRange(t *testing.T) {
	src := entropy.New(rand.New(rand.NewSource(2)))
	for i := 0; i < 100; i++ {
		p := src.Payload(16, 256)
		assert.GreaterOrEqual(t, len(p), 16)
		assert.LessOrEqual(t, len(p), 256)
	}
}

func TestPayloadFixedLengthWhenMinEqualsMax(t *testing.T) {
	src := entropy.New(rand.New(rand.NewSource(3)))
	p := src.Payload(32, 32)
	assert.Len(t, p, 32)
}

func TestPayloadZeroLength(t *testing.T) {
	src := entropy.New(rand.New(rand.NewSource(4)))
	p := src.Payload(0, 0)
	assert.Empty(t, p)
}
