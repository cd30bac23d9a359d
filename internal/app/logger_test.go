package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewLoggerLevels(t *testing.T) {
	prod := NewLogger("production")
	assert.False(t, prod.Core().Enabled(zap.DebugLevel))
	assert.True(t, prod.Core().Enabled(zap.InfoLevel))

	// Вне production включён debug
	dev := NewLogger("development")
	assert.True(t, dev.Core().Enabled(zap.DebugLevel))
}
