package nodes

import (
	"encoding/json"
	"math"
	"os"
	"reflect"
	"strings"

	polyglot "github.com/nextabc-lab/polyglot-neato"
	"go.uber.org/zap"
)

// ProfileInfo 是Profile目录中version.txt记录的版本。
// 读取成功时Version为字符串，失败时为数值0。
type ProfileInfo struct {
	Version interface{}
}

func (p ProfileInfo) customData() polyglot.CustomData {
	return polyglot.CustomData{"version": p.Version}
}

// ReadProfileInfo 读取Profile版本文件，去掉其中的换行符。
func ReadProfileInfo(path string, log *zap.SugaredLogger) ProfileInfo {
	data, err := os.ReadFile(path)
	if nil != err {
		log.Errorf("get_profile_info: Failed to read file %s: %s", path, err)
		return ProfileInfo{Version: int64(0)}
	}
	return ProfileInfo{Version: strings.ReplaceAll(string(data), "\n", "")}
}

// ReconcileProfile 比较当前Profile版本和已保存的版本，返回更新后的自定义数据，
// 以及是否需要重新安装Profile。persisted本身不会被修改。
// 版本比较区分类型：数值0与字符串"0"不相等。
func ReconcileProfile(current ProfileInfo, persisted polyglot.CustomData) (polyglot.CustomData, bool) {
	cd := persisted.Copy()
	stored, ok := cd[KeyProfileInfo]
	if !ok {
		stored = polyglot.CustomData{"version": int64(0)}
	}
	update := !versionEqual(current.Version, storedVersion(stored))
	cd[KeyProfileInfo] = current.customData()
	return cd, update
}

func storedVersion(info interface{}) interface{} {
	switch m := info.(type) {
	case polyglot.CustomData:
		return m["version"]
	case map[string]interface{}:
		return m["version"]
	default:
		return nil
	}
}

func versionEqual(a, b interface{}) bool {
	return reflect.DeepEqual(normalizeNumber(a), normalizeNumber(b))
}

// normalizeNumber 将各种数值类型统一为int64（整数）或float64，字符串保持不变。
func normalizeNumber(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case float32:
		return normalizeNumber(float64(n))
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < math.MaxInt64 {
			return int64(n)
		}
		return n
	case json.Number:
		if iv, err := n.Int64(); nil == err {
			return iv
		}
		if fv, err := n.Float64(); nil == err {
			return fv
		}
		return n.String()
	default:
		return v
	}
}
