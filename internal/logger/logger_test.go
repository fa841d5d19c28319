package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := New("crapsim", "local")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("crapsim", "prod")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	w, err := WithLevel(l, "warn")
	require.NoError(t, err)
	assert.False(t, w.Core().Enabled(zapcore.InfoLevel))

	_, err = WithLevel(l, "loud")
	require.Error(t, err)
}
