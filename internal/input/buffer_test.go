package input

import (
	"strings"
	"sync"
	"testing"

	"github.com/codefionn/calcschnell/internal/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowed(t *testing.T) {
	for _, r := range "0123456789+-*/(). " {
		assert.True(t, IsAllowed(r), "%q should be allowed", r)
	}
	for _, r := range "a=^,\t\nxé" {
		assert.False(t, IsAllowed(r), "%q should be rejected", r)
	}
}

func TestBufferAppendAndClear(t *testing.T) {
	var b Buffer

	for _, r := range "(2+3)*4" {
		require.True(t, b.Append(r))
	}
	assert.False(t, b.Append('x'))
	assert.Equal(t, "(2+3)*4", b.String())
	assert.Equal(t, 7, b.Len())

	b.Clear()
	assert.Equal(t, "", b.String())
	assert.Equal(t, 0, b.Len())
}

func TestBufferAppendStringFilters(t *testing.T) {
	var b Buffer

	accepted := b.AppendString("2 + x3=?")
	assert.Equal(t, 5, accepted)
	assert.Equal(t, "2 + 3", b.String())
}

func TestBufferSetReplaces(t *testing.T) {
	var b Buffer
	b.AppendString("1+1")

	b.Set("7*6")
	assert.Equal(t, "7*6", b.String())
}

func TestBufferBackspace(t *testing.T) {
	var b Buffer
	assert.False(t, b.Backspace())

	b.AppendString("12")
	assert.True(t, b.Backspace())
	assert.Equal(t, "1", b.String())
}

func TestBufferCapacity(t *testing.T) {
	var b Buffer

	accepted := b.AppendString(strings.Repeat("1", consts.MaxInputLen+10))
	assert.Equal(t, consts.MaxInputLen-1, accepted)
	assert.Equal(t, consts.MaxInputLen-1, b.Len())
	assert.False(t, b.Append('2'))

	b.Backspace()
	assert.True(t, b.Append('2'))
}

func TestBufferConcurrentAppend(t *testing.T) {
	var b Buffer
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				b.Append('1')
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, b.Len())
}

func TestBufferTrimPrefix(t *testing.T) {
	var b Buffer
	b.AppendString("1+2*3")

	assert.True(t, b.TrimPrefix("1+2"))
	assert.Equal(t, "*3", b.String())

	assert.False(t, b.TrimPrefix("9"))
	assert.Equal(t, "*3", b.String())

	assert.False(t, b.TrimPrefix("*3+4"))
	assert.True(t, b.TrimPrefix("*3"))
	assert.Equal(t, 0, b.Len())
}
