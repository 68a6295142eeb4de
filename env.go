package polyglot

import (
	"os"
	"strconv"
)

func EnvGetString(key, defValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	} else {
		return defValue
	}
}

func EnvGetInt64(key string, defValue int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if iv, err := strconv.ParseInt(v, 10, 64); nil != err {
			log.Errorf("环境变量[%s]不是有效的整数: %s", key, v)
			return defValue
		} else {
			return iv
		}
	} else {
		return defValue
	}
}

func EnvGetBoolean(key string, defValue bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		return "true" == v
	} else {
		return defValue
	}
}
