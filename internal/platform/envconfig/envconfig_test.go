package envconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetenvOrDefault(t *testing.T) {
	t.Setenv("ENVCONFIG_TEST_KEY", "")
	assert.Equal(t, "fallback", GetenvOrDefault("ENVCONFIG_TEST_KEY", "fallback"))

	t.Setenv("ENVCONFIG_TEST_KEY", "  ")
	assert.Equal(t, "fallback", GetenvOrDefault("ENVCONFIG_TEST_KEY", "fallback"))

	t.Setenv("ENVCONFIG_TEST_KEY", "value")
	assert.Equal(t, "value", GetenvOrDefault("ENVCONFIG_TEST_KEY", "fallback"))
}

type loadTarget struct {
	Name      string `env:"ENVCONFIG_TEST_NAME"`
	Enabled   bool   `env:"ENVCONFIG_TEST_ENABLED"`
	Count     int    `env:"ENVCONFIG_TEST_COUNT"`
	Ignored   string `env:"-"`
	Untouched string
}

func TestLoadPopulatesTaggedFields(t *testing.T) {
	t.Setenv("ENVCONFIG_TEST_NAME", "engine")
	t.Setenv("ENVCONFIG_TEST_ENABLED", "true")
	t.Setenv("ENVCONFIG_TEST_COUNT", "7")

	target := loadTarget{Ignored: "keep-me", Untouched: "keep-me-too"}

	require.NoError(t, Load(&target))

	assert.Equal(t, "engine", target.Name)
	assert.True(t, target.Enabled)
	assert.Equal(t, 7, target.Count)
	assert.Equal(t, "keep-me", target.Ignored)
	assert.Equal(t, "keep-me-too", target.Untouched)
}

func TestLoadLeavesFieldUnsetWhenEnvAbsent(t *testing.T) {
	target := loadTarget{Name: "default-name"}

	require.NoError(t, Load(&target))

	assert.Equal(t, "default-name", target.Name)
}

func TestLoadIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("ENVCONFIG_TEST_COUNT", "not-a-number")

	target := loadTarget{Count: 5}

	require.NoError(t, Load(&target))

	assert.Equal(t, 5, target.Count)
}

func TestLoadRejectsNonPointer(t *testing.T) {
	err := Load(loadTarget{})
	assert.Error(t, err)
}

func TestLoadRejectsPointerToNonStruct(t *testing.T) {
	n := 0
	err := Load(&n)
	assert.Error(t, err)
}
