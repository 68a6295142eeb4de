package polyglot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomData_Copy(t *testing.T) {
	src := CustomData{
		"profile_info": map[string]interface{}{"version": "1.0.0"},
		"list":         []interface{}{CustomData{"a": 1}},
	}
	dst := src.Copy()
	dst["profile_info"].(map[string]interface{})["version"] = "2.0.0"
	dst["list"].([]interface{})[0].(CustomData)["a"] = 2

	assert.Equal(t, "1.0.0", src["profile_info"].(map[string]interface{})["version"])
	assert.Equal(t, 1, src["list"].([]interface{})[0].(CustomData)["a"])
}

func TestUpdateCustomData(t *testing.T) {
	host := NewMemoryHost()
	require.NoError(t, host.SaveCustomData(CustomData{"count": 1, "keep": "x"}))

	err := UpdateCustomData(host, func(data CustomData) (CustomData, error) {
		data["count"] = data["count"].(int) + 1
		return data, nil
	})
	require.NoError(t, err)
	assert.Equal(t, CustomData{"count": 2, "keep": "x"}, host.CustomData())

	err = UpdateCustomData(host, func(data CustomData) (CustomData, error) {
		data["count"] = 100
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 2, host.CustomData()["count"])
}

func TestMemoryHost(t *testing.T) {
	host := NewMemoryHost()
	node := newTestNode()

	assert.ErrorIs(t, host.ReportDriver("ctrl", Driver{Driver: "ST", Value: 1}), ErrNodeNotFound)
	require.NoError(t, host.AddNode(node))
	waitFor(t, node.started)

	v, ok := host.DriverValue("ctrl", "ST")
	assert.True(t, ok)
	assert.Equal(t, 0, v)
	require.NoError(t, host.ReportDriver("ctrl", Driver{Driver: "ST", Value: 1, Uom: UomBoolean}))
	v, _ = host.DriverValue("ctrl", "ST")
	assert.Equal(t, 1, v)
	assert.Len(t, host.Reports, 1)

	require.NoError(t, host.Dispatch(Command{Address: "ctrl", Cmd: "PING"}))
	assert.Equal(t, "PING", (<-node.commands).Cmd)
	assert.ErrorIs(t, host.Dispatch(Command{Address: "ctrl", Cmd: "NOPE"}), ErrUnknownCommand)
	assert.ErrorIs(t, host.Dispatch(Command{Address: "other", Cmd: "PING"}), ErrNodeNotFound)

	require.NoError(t, host.AddCustomParams(CustomData{"debugMode": 10}))
	require.NoError(t, host.AddCustomParams(CustomData{"x": "y"}))
	assert.Equal(t, CustomData{"debugMode": 10, "x": "y"}, host.CustomParams())

	host.InstallProfileErr = assert.AnError
	assert.ErrorIs(t, host.InstallProfile(), assert.AnError)
	assert.Equal(t, 1, host.InstallProfileCount)
}

func TestDriver_ValueString(t *testing.T) {
	cases := map[string]Driver{
		"0":   {Value: nil},
		"1":   {Value: true},
		"42":  {Value: 42},
		"7":   {Value: int64(7)},
		"1.5": {Value: 1.5},
		"abc": {Value: "abc"},
	}
	for expected, d := range cases {
		assert.Equal(t, expected, d.ValueString())
	}
}
