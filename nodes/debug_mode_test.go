package nodes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLogLevelOf(t *testing.T) {
	expected := map[int]zapcore.Level{
		0:  zapcore.DebugLevel,
		10: zapcore.DebugLevel,
		20: zapcore.InfoLevel,
		30: zapcore.WarnLevel,
		40: zapcore.ErrorLevel,
		50: zapcore.DPanicLevel,
	}
	for mode, level := range expected {
		actual, err := LogLevelOf(mode)
		require.NoError(t, err)
		assert.Equal(t, level, actual, "mode %d", mode)
	}
	for _, mode := range []int{-10, 1, 15, 60} {
		_, err := LogLevelOf(mode)
		assert.ErrorIs(t, err, ErrInvalidDebugLevel, "mode %d", mode)
	}
}

func TestSetDebugMode(t *testing.T) {
	cases := []struct {
		requested interface{}
		mode      int
		level     zapcore.Level
	}{
		{nil, 0, zapcore.DebugLevel},
		{0, 0, zapcore.DebugLevel},
		{10, 10, zapcore.DebugLevel},
		{"20", 20, zapcore.InfoLevel},
		{json.Number("30"), 30, zapcore.WarnLevel},
		{float64(40), 40, zapcore.ErrorLevel},
		{int64(50), 50, zapcore.DPanicLevel},
	}
	for _, c := range cases {
		f := newFixture(t, "", "")
		ctrl := f.started(t)
		f.level.SetLevel(zapcore.FatalLevel)

		ctrl.SetDebugMode(c.requested)
		assert.Equal(t, c.level, f.level.Level(), "requested %v", c.requested)
		assert.Equal(t, c.mode, ctrl.DebugMode())
		assert.Equal(t, c.mode, f.host.CustomParams()[KeyDebugMode])
		assert.Equal(t, c.mode, f.driver(DriverDebugMode))
	}
}

func TestSetDebugMode_NilEqualsZero(t *testing.T) {
	a := newFixture(t, "", "")
	b := newFixture(t, "", "")
	ca, cb := a.started(t), b.started(t)
	ca.SetDebugMode(30)
	cb.SetDebugMode(30)

	ca.SetDebugMode(nil)
	cb.SetDebugMode(0)
	assert.Equal(t, a.level.Level(), b.level.Level())
	assert.Equal(t, zapcore.DebugLevel, a.level.Level())
	assert.Equal(t, a.host.CustomParams(), b.host.CustomParams())
	assert.Equal(t, 0, a.host.CustomParams()[KeyDebugMode])
}

func TestSetDebugMode_InvalidKeepsState(t *testing.T) {
	for _, requested := range []interface{}{15, "15", "verbose", 20.5, struct{}{}} {
		f := newFixture(t, "", "")
		ctrl := f.started(t)
		ctrl.SetDebugMode(20)
		reports := len(f.host.Reports)

		ctrl.SetDebugMode(requested)
		assert.Equal(t, zapcore.InfoLevel, f.level.Level(), "requested %v", requested)
		assert.Equal(t, 20, ctrl.DebugMode())
		assert.Equal(t, 20, f.host.CustomParams()[KeyDebugMode])
		assert.Equal(t, 20, f.driver(DriverDebugMode))
		assert.Len(t, f.host.Reports, reports)
		assert.Equal(t, 1, f.errorLogs("set_debug_level"))
	}
}

func TestSetDebugMode_UnknownLevelMessage(t *testing.T) {
	f := newFixture(t, "", "")
	ctrl := f.started(t)
	ctrl.SetDebugMode(15)
	assert.Equal(t, 1, f.errorLogs("Unknown level 15"))
}
