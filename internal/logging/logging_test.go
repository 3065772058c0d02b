package logging

import (
	"testing"

	"github.com/san-kum/graphsim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		cfg  config.Log
		want zapcore.Level
	}{
		{config.Log{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{config.Log{Level: "info", Format: "json"}, zapcore.InfoLevel},
		{config.Log{Level: "error", Format: "json"}, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Level+"/"+tt.cfg.Format, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.Log{Level: "loud", Format: "json"})
	assert.Error(t, err)
	assert.NotNil(t, Must(config.Log{Level: "loud"}))
}
