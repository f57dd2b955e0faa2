package telemetry

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresAddressAndName(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "procurement"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, zap.NewNop())
	assert.Error(t, err)
}

func TestProfilerConfig_ProfileTypes(t *testing.T) {
	cfg := ProfilerConfig{ProfileCPU: true, ProfileContention: true}
	types := cfg.profileTypes()

	assert.Contains(t, types, pyroscope.ProfileCPU)
	assert.Contains(t, types, pyroscope.ProfileMutexDuration)
	assert.Contains(t, types, pyroscope.ProfileBlockCount)
	assert.NotContains(t, types, pyroscope.ProfileAllocSpace)
	assert.Empty(t, ProfilerConfig{}.profileTypes())
}
