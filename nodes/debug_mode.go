package nodes

import (
	"encoding/json"
	"strconv"
	"strings"

	polyglot "github.com/nextabc-lab/polyglot-neato"
	"github.com/pkg/errors"
	"github.com/yoojia/go-value"
	"go.uber.org/zap/zapcore"
)

// DefaultDebugMode 未设置debugMode时的日志级别
const DefaultDebugMode = 0

var ErrInvalidDebugLevel = errors.New("invalid debug level")

// 0(NOTSET)与10(DEBUG)相同，都输出全部日志
var debugModeLevels = map[int]zapcore.Level{
	0:  zapcore.DebugLevel,
	10: zapcore.DebugLevel,
	20: zapcore.InfoLevel,
	30: zapcore.WarnLevel,
	40: zapcore.ErrorLevel,
	50: zapcore.DPanicLevel,
}

// LogLevelOf 返回debugMode对应的日志阈值
func LogLevelOf(mode int) (zapcore.Level, error) {
	if level, ok := debugModeLevels[mode]; ok {
		return level, nil
	}
	return zapcore.DebugLevel, errors.WithMessagef(ErrInvalidDebugLevel, "Unknown level %d", mode)
}

// parseDebugMode 将指令或自定义参数中的值转为整数，nil视为0
func parseDebugMode(v interface{}) (int, error) {
	switch t := v.(type) {
	case nil:
		return DefaultDebugMode, nil
	case string:
		if "" == strings.TrimSpace(t) {
			return DefaultDebugMode, nil
		}
		iv, err := strconv.Atoi(strings.TrimSpace(t))
		if nil != err {
			return 0, errors.WithMessagef(ErrInvalidDebugLevel, "%q is not an integer", t)
		}
		return iv, nil
	case json.Number:
		iv, err := t.Int64()
		if nil != err {
			return 0, errors.WithMessagef(ErrInvalidDebugLevel, "%s is not an integer", t)
		}
		return int(iv), nil
	case float64:
		if t != float64(int(t)) {
			return 0, errors.WithMessagef(ErrInvalidDebugLevel, "%v is not an integer", t)
		}
		return int(t), nil
	default:
		if iv, ok := value.ToInt64(v); ok {
			return int(iv), nil
		}
		return 0, errors.WithMessagef(ErrInvalidDebugLevel, "unsupported value %v", v)
	}
}

// SetDebugMode 设置日志级别，保存到自定义参数并报告GV5。
// 无效的级别只记录错误日志，日志阈值和已保存的值都不变。
func (c *BaseController) SetDebugMode(requested interface{}) {
	mode, err := parseDebugMode(requested)
	if nil != err {
		c.lError("set_debug_level", err)
		return
	}
	level, err := LogLevelOf(mode)
	if nil != err {
		c.lError("set_debug_level", err)
		return
	}
	c.debugMode = mode
	if err := c.host.AddCustomParams(polyglot.CustomData{KeyDebugMode: mode}); nil != err {
		c.lError("set_debug_level", errors.WithMessage(err, "save debugMode"))
	}
	c.SetDriver(DriverDebugMode, mode)
	c.level.SetLevel(level)
}

// DebugMode 返回当前的debugMode
func (c *BaseController) DebugMode() int {
	return c.debugMode
}
