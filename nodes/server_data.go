package nodes

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
)

// DefaultVersion 在server.json中找不到版本号时使用
const DefaultVersion = "0.0.0"

// ServerDescriptor 是server.json的内容，以及由credits[0].version解析出的版本号。
type ServerDescriptor struct {
	Raw          map[string]interface{}
	Version      string
	VersionMajor int
	VersionMinor int
}

// DefaultServerDescriptor 是读取server.json失败时使用的描述
func DefaultServerDescriptor() *ServerDescriptor {
	return newServerDescriptor(make(map[string]interface{}), DefaultVersion, 0, 0)
}

func newServerDescriptor(raw map[string]interface{}, version string, major, minor int) *ServerDescriptor {
	raw["version"] = version
	raw["version_major"] = major
	raw["version_minor"] = minor
	return &ServerDescriptor{
		Raw:          raw,
		Version:      version,
		VersionMajor: major,
		VersionMinor: minor,
	}
}

// LoadServerDescriptor 读取并解析server.json。文件允许包含注释和尾随逗号。
// 版本号缺失或格式错误时使用 DefaultVersion，不视为错误。
func LoadServerDescriptor(path string, log *zap.SugaredLogger) (*ServerDescriptor, error) {
	data, err := os.ReadFile(path)
	if nil != err {
		log.Errorf("get_server_data: Failed to read server file %s: %s", path, err)
		return nil, errors.Wrapf(err, "read server file %s", path)
	}
	raw := make(map[string]interface{})
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); nil != err {
		log.Errorf("get_server_data: Failed to parse server file %s: %s", path, err)
		return nil, errors.Wrapf(err, "parse server file %s", path)
	}
	version, ok := creditsVersion(raw)
	if !ok {
		log.Info("get_server_data: Version not found in server.json.")
		return newServerDescriptor(raw, DefaultVersion, 0, 0), nil
	}
	major, minor, err := parseVersion(version)
	if nil != err {
		log.Infof("get_server_data: Version %q in server.json is malformed: %s", version, err)
		return newServerDescriptor(raw, DefaultVersion, 0, 0), nil
	}
	return newServerDescriptor(raw, version, major, minor), nil
}

func creditsVersion(raw map[string]interface{}) (string, bool) {
	credits, ok := raw["credits"].([]interface{})
	if !ok || 0 == len(credits) {
		return "", false
	}
	first, ok := credits[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	version, ok := first["version"].(string)
	return version, ok
}

// parseVersion 返回版本号的major和minor。
// minor取第三段，"3.5.2"的minor为2；只有一段时minor为0。
func parseVersion(version string) (major, minor int, err error) {
	sv := strings.Split(version, ".")
	if major, err = strconv.Atoi(sv[0]); nil != err {
		return 0, 0, err
	}
	if len(sv) > 1 {
		if len(sv) < 3 {
			return 0, 0, errors.Errorf("version %q has no third segment", version)
		}
		if minor, err = strconv.Atoi(sv[2]); nil != err {
			return 0, 0, err
		}
	}
	return major, minor, nil
}
