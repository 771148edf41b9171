package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	Env = map[string]string{"SAASFOX_TEST_KEY": "from-file"}
	t.Cleanup(func() { Env = nil })
	t.Setenv("SAASFOX_TEST_KEY", "from-process")

	assert.Equal(t, "from-file", GetEnv("SAASFOX_TEST_KEY", "def"))
	assert.Equal(t, "def", GetEnv("SAASFOX_MISSING_KEY", "def"))
}

func TestGetEnvIntAndDuration(t *testing.T) {
	Env = map[string]string{
		"LIMIT":     "42",
		"BAD_LIMIT": "forty-two",
		"WINDOW":    "90s",
	}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 42, GetEnvInt("LIMIT", 1))
	assert.Equal(t, 7, GetEnvInt("BAD_LIMIT", 7))
	assert.Equal(t, 3, GetEnvInt("UNSET_LIMIT", 3))
	assert.Equal(t, 90*time.Second, GetEnvDuration("WINDOW", time.Second))
	assert.Equal(t, time.Minute, GetEnvDuration("UNSET_WINDOW", time.Minute))
}
