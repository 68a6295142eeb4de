package polyglot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigByName(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "neato.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
[Globals]
ProfileNum = 4
MqttBroker = "tcp://polyglot.local:1883"
MqttUsername = "ns"
MqttPassword = "secret"
MqttQoS = 0
MqttMaxRetry = 3
LogVerbose = true
ServerFile = "/opt/ns/server.json"
`), 0644))

	config, err := LoadConfigByName(file)
	require.NoError(t, err)

	globals := DefaultGlobals()
	ApplyConfig(globals, config)
	assert.Equal(t, 4, globals.ProfileNum)
	assert.Equal(t, "tcp://polyglot.local:1883", globals.MqttBroker)
	assert.Equal(t, "ns", globals.MqttUsername)
	assert.Equal(t, "secret", globals.MqttPassword)
	assert.Equal(t, uint8(0), globals.MqttQoS)
	assert.Equal(t, 3, globals.MqttMaxRetry)
	assert.True(t, globals.LogVerbose)
	assert.Equal(t, "/opt/ns/server.json", globals.ServerFile)
	assert.Equal(t, DefaultProfileVersionFile, globals.ProfileVersionFile)
}

func TestLoadConfigByName_NotExist(t *testing.T) {
	t.Setenv(EnvKeyConfig, "")
	_, err := LoadConfigByName(filepath.Join(t.TempDir(), "none.toml"))
	assert.ErrorIs(t, err, ErrConfigNotExist)
}

func TestDefaultGlobals_Env(t *testing.T) {
	t.Setenv(EnvKeyProfileNum, "9")
	t.Setenv(EnvKeyMQBroker, "tcp://10.0.0.2:1883")
	t.Setenv(EnvKeyMQQOS, "bad")
	globals := DefaultGlobals()
	assert.Equal(t, 9, globals.ProfileNum)
	assert.Equal(t, "tcp://10.0.0.2:1883", globals.MqttBroker)
	assert.Equal(t, uint8(1), globals.MqttQoS)
}

func TestDryRunContext(t *testing.T) {
	ctx := CreateDryRunContext(DefaultGlobals())
	assert.NoError(t, ctx.WaitConfig())
	_, ok := ctx.Host().(*MemoryHost)
	assert.True(t, ok)
	assert.NotNil(t, ctx.LogLevel())
}

func TestCheckRequired(t *testing.T) {
	assert.Panics(t, func() { checkRequired(0, "ProfileNum") })
	assert.Panics(t, func() { checkRequired("", "MqttBroker") })
	assert.NotPanics(t, func() { checkRequired(3, "ProfileNum") })
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "udi/polyglot/ns/12", topicOfNodeServer(12))
	assert.Panics(t, func() { checkTopic("/udi") })
}
