package plugins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPlugin is a mock implementation of the Plugin interface
type MockPlugin struct {
	mock.Mock
}

func (m *MockPlugin) GetType() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlugin) Activity(ctx context.Context, p map[string]interface{}) (interface{}, error) {
	args := m.Called(ctx, p)
	return args.Get(0), args.Error(1)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	mockPlugin := new(MockPlugin)
	mockPlugin.On("GetType").Return("test")

	require.NoError(t, registry.Register(mockPlugin))
	assert.Error(t, registry.Register(mockPlugin))

	plugin, exists := registry.Get("test")
	assert.True(t, exists)
	assert.Equal(t, mockPlugin, plugin)

	_, exists = registry.Get("nonexistent")
	assert.False(t, exists)
}

func TestRegistry_AllSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		p := new(MockPlugin)
		p.On("GetType").Return(name)
		require.NoError(t, registry.Register(p))
	}

	var types []string
	for _, p := range registry.All() {
		types = append(types, p.GetType())
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, types)
}

func TestMockPluginActivity(t *testing.T) {
	mockPlugin := new(MockPlugin)
	params := map[string]interface{}{"name": "step"}
	mockPlugin.On("Activity", mock.Anything, params).Return(true, nil)

	out, err := mockPlugin.Activity(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, true, out)
	mockPlugin.AssertExpectations(t)
}
