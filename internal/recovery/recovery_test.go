package recovery

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("no panic", func(t *testing.T) {
		called := false
		err := Run(1, func() { called = true })

		assert.True(t, called)
		assert.Nil(t, err)
	})

	t.Run("string panic", func(t *testing.T) {
		err := Run(7, func() { panic("boom") })

		require.NotNil(t, err)
		assert.Equal(t, 7, err.WorkerID)
		assert.Equal(t, "boom", err.Value)
		assert.NotEmpty(t, err.Stack)
		assert.Contains(t, err.Error(), "worker 7")
	})

	t.Run("error panic", func(t *testing.T) {
		cause := errors.New("bad input")
		err := Run(0, func() { panic(cause) })

		require.NotNil(t, err)
		assert.ErrorIs(t, err, cause)
	})
}

func TestDescribe(t *testing.T) {
	assert.Empty(t, Describe(nil))

	err := Run(2, func() { panic("described") })
	require.NotNil(t, err)

	out := Describe(err)
	assert.True(t, strings.HasPrefix(out, "task panic in worker 2: described"))
	assert.Contains(t, out, "goroutine")
}
