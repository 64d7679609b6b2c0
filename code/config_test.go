package code

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/scriptbridge/runtime"
)

func TestConfig_ValidateRequired_Host(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "Host")
}

func TestConfig_ValidateRejectsNegativeTimeout(t *testing.T) {
	cfg := Config{Host: newMockHost(), DefaultTimeout: -time.Second}
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "DefaultTimeout")
}

func TestConfig_ValidateRejectsUnknownScope(t *testing.T) {
	cfg := Config{Host: newMockHost(), DefaultScope: "Global"}
	assert.ErrorIs(t, cfg.Validate(), ErrConfiguration)
}

func TestConfig_Validate_Success(t *testing.T) {
	cfg := Config{
		Host:           newMockHost(),
		DefaultTimeout: 30 * time.Second,
		DefaultScope:   runtime.ScopePublic,
	}
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Host: newMockHost()}
	cfg.applyDefaults()

	assert.Equal(t, runtime.ScopePrivate, cfg.DefaultScope)
	assert.NotNil(t, cfg.Logger, "want no-op logger")
	assert.Zero(t, cfg.DefaultTimeout)
}

func TestConfig_ApplyDefaultsKeepsValues(t *testing.T) {
	logger := &recordingLogger{}
	cfg := Config{Host: newMockHost(), DefaultScope: runtime.ScopePublic, Logger: logger}
	cfg.applyDefaults()

	assert.Equal(t, runtime.ScopePublic, cfg.DefaultScope)
	assert.Same(t, logger, cfg.Logger)
}
