package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitDevelopment(t *testing.T) {
	require.NoError(t, InitDevelopment())
	t.Cleanup(func() {
		mu.Lock()
		log = nil
		mu.Unlock()
		zap.ReplaceGlobals(zap.NewNop())
	})

	l := L()
	assert.NotNil(t, l)
	assert.Same(t, l, zap.L())
	assert.NotPanics(t, Sync)
}
