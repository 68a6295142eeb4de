package polyglot

import "time"

// 全局配置
type Globals struct {
	// NodeServer在Polyglot中的槽位号
	ProfileNum int
	// 文件位置，相对于NodeServer的工作目录
	ServerFile         string
	ProfileVersionFile string
	LogVerbose         bool
	// MQTT
	MqttBroker            string
	MqttUsername          string
	MqttPassword          string
	MqttQoS               uint8
	MqttKeepAlive         time.Duration
	MqttPingTimeout       time.Duration
	MqttConnectTimeout    time.Duration
	MqttReconnectInterval time.Duration
	MqttAutoReconnect     bool
	MqttCleanSession      bool
	MqttMaxRetry          int
	MqttQuitMillSec       uint
	// 等待Polyglot下发config消息的超时时间
	ConfigTimeout time.Duration
}
