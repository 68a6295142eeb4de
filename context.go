package polyglot

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/yoojia/go-value"
	"go.uber.org/zap"
)

// Context 为NodeServer提供Polyglot通讯环境和参数设置。
type Context interface {
	// Globals 返回全局配置
	Globals() *Globals

	// Host 返回Polyglot主机
	Host() Host

	// WaitConfig 连接Polyglot并等待其下发config消息。DryRun模式下立即返回。
	WaitConfig() error

	// 返回Log对象
	Log() *zap.SugaredLogger

	// LogLevel 返回日志阈值，节点通过它调整日志级别
	LogLevel() LevelSink

	// 当设置了LogVerbose时触发冗余日志输出操作。
	LogIfVerbose(fn func(log *zap.SugaredLogger))

	// TermChan 返回监听系统中断退出信号的通道
	TermChan() <-chan os.Signal

	// TermAwait 阻塞等待系统中断退出信号，或者Polyglot的stop消息
	TermAwait() error

	// Destroy 由Run自动调用
	destroy()
}

const (
	EnvKeyProfileNum     = "POLYGLOT_PROFILE_NUM"
	EnvKeyMQBroker       = "POLYGLOT_MQTT_BROKER"
	EnvKeyMQUsername     = "POLYGLOT_MQTT_USERNAME"
	EnvKeyMQPassword     = "POLYGLOT_MQTT_PASSWORD"
	EnvKeyMQQOS          = "POLYGLOT_MQTT_QOS"
	EnvKeyMQCleanSession = "POLYGLOT_MQTT_CLEAN_SESSION"
	EnvKeyConfig         = "POLYGLOT_CONFIG"
	EnvKeyLogVerbose     = "POLYGLOT_LOG_VERBOSE"

	MqttBrokerDefault = "tcp://localhost:1883"

	DefaultServerFile         = "server.json"
	DefaultProfileVersionFile = "profile/version.txt"

	DefaultConfName = "polyglot.toml"
	DefaultConfDir  = "/etc/polyglot/"
)

var (
	ErrConfigNotExist = errors.New("config not exists")
)

////

// Run 使用默认配置运行NodeServer
func Run(application func(ctx Context) error) {
	RunWith(CreateDefaultContext(), application)
}

// RunWith 在指定Context中运行NodeServer
func RunWith(ctx Context, application func(ctx Context) error) {
	log.Info("启动NodeServer")
	defer func() {
		log.Info("停止NodeServer")
		ctx.destroy()
	}()
	if err := application(ctx); nil != err {
		log.Error("NodeServer出错: ", err)
	}
}

// DefaultGlobals 从环境变量中读取 Globals 参数
func DefaultGlobals() *Globals {
	return &Globals{
		ProfileNum:            int(EnvGetInt64(EnvKeyProfileNum, 0)),
		ServerFile:            DefaultServerFile,
		ProfileVersionFile:    DefaultProfileVersionFile,
		LogVerbose:            EnvGetBoolean(EnvKeyLogVerbose, false),
		MqttBroker:            EnvGetString(EnvKeyMQBroker, MqttBrokerDefault),
		MqttUsername:          EnvGetString(EnvKeyMQUsername, ""),
		MqttPassword:          EnvGetString(EnvKeyMQPassword, ""),
		MqttQoS:               uint8(EnvGetInt64(EnvKeyMQQOS, 1)),
		MqttCleanSession:      EnvGetBoolean(EnvKeyMQCleanSession, true),
		MqttKeepAlive:         time.Second * 10,
		MqttPingTimeout:       time.Second * 1,
		MqttConnectTimeout:    time.Second * 5,
		MqttReconnectInterval: time.Second * 1,
		MqttAutoReconnect:     true,
		MqttMaxRetry:          120,
		MqttQuitMillSec:       500,
		ConfigTimeout:         time.Second * 30,
	}
}

// CreateContext 使用指定 Globals 参数，创建连接Polyglot的Context对象。
func CreateContext(globals *Globals) Context {
	return &NodeContext{
		globals: globals,
		poly:    NewInterface(globals),
	}
}

// CreateDryRunContext 创建不连接Polyglot的Context对象，所有Host调用记录在内存中。
func CreateDryRunContext(globals *Globals) Context {
	return &NodeContext{
		globals: globals,
		memory:  NewMemoryHost(),
	}
}

// CreateDefaultContext 从环境变量和默认配置文件中读取 Globals 参数，并创建返回Context对象。
func CreateDefaultContext() Context {
	globals := DefaultGlobals()
	if config, err := LoadConfig(); nil == err {
		ApplyConfig(globals, config)
	}
	return CreateContext(globals)
}

//// Context实现

type NodeContext struct {
	globals *Globals
	poly    *Interface
	memory  *MemoryHost
	started bool
}

func (c *NodeContext) Globals() *Globals {
	return c.globals
}

func (c *NodeContext) Host() Host {
	if nil != c.memory {
		return c.memory
	}
	return c.poly
}

func (c *NodeContext) WaitConfig() error {
	if nil != c.memory {
		return nil
	}
	if !c.started {
		if err := c.poly.Start(); nil != err {
			return err
		}
		c.started = true
	}
	log.Infof("等待Polyglot下发配置，超时：%s", c.globals.ConfigTimeout)
	return c.poly.WaitConfig(c.globals.ConfigTimeout)
}

func (c *NodeContext) Log() *zap.SugaredLogger {
	return log
}

func (c *NodeContext) LogLevel() LevelSink {
	return zapLogLevel
}

func (c *NodeContext) LogIfVerbose(fn func(log *zap.SugaredLogger)) {
	if c.globals.LogVerbose {
		fn(log)
	}
}

func (c *NodeContext) TermChan() <-chan os.Signal {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM, syscall.SIGINT)
	signal.Ignore(syscall.SIGPIPE)
	return sig
}

func (c *NodeContext) TermAwait() error {
	var done <-chan struct{}
	if nil != c.poly {
		done = c.poly.Done()
	}
	select {
	case <-c.TermChan():
	case <-done:
	}
	return nil
}

func (c *NodeContext) destroy() {
	if c.started {
		c.poly.Stop()
	}
	_ = ZapLogger.Sync()
}

////

// ApplyConfig 使用配置文件中的Globals段覆盖全局配置
func ApplyConfig(globals *Globals, config map[string]interface{}) {
	section, ok := value.ToMap(config["Globals"])
	if !ok {
		return
	}
	if iv, ok := value.ToInt64(section["ProfileNum"]); ok {
		globals.ProfileNum = int(iv)
	}
	if str, ok := value.ToStringB(section["ServerFile"]); ok {
		globals.ServerFile = str
	}
	if str, ok := value.ToStringB(section["ProfileVersionFile"]); ok {
		globals.ProfileVersionFile = str
	}
	if flag, ok := value.ToBool(section["LogVerbose"]); ok {
		globals.LogVerbose = flag
	}
	// MQTT配置
	if str, ok := value.ToStringB(section["MqttBroker"]); ok {
		globals.MqttBroker = str
	}
	if str, ok := value.ToStringB(section["MqttUsername"]); ok {
		globals.MqttUsername = str
	}
	if str, ok := value.ToStringB(section["MqttPassword"]); ok {
		globals.MqttPassword = str
	}
	if iv, ok := value.ToInt64(section["MqttQoS"]); ok {
		globals.MqttQoS = uint8(iv)
	}
	if du, ok := value.ToDuration(section["MqttKeepAlive"]); ok {
		globals.MqttKeepAlive = du
	}
	if du, ok := value.ToDuration(section["MqttPingTimeout"]); ok {
		globals.MqttPingTimeout = du
	}
	if du, ok := value.ToDuration(section["MqttConnectTimeout"]); ok {
		globals.MqttConnectTimeout = du
	}
	if du, ok := value.ToDuration(section["MqttReconnectInterval"]); ok {
		globals.MqttReconnectInterval = du
	}
	if flag, ok := value.ToBool(section["MqttAutoReconnect"]); ok {
		globals.MqttAutoReconnect = flag
	}
	if flag, ok := value.ToBool(section["MqttCleanSession"]); ok {
		globals.MqttCleanSession = flag
	}
	if iv, ok := value.ToInt64(section["MqttMaxRetry"]); ok {
		globals.MqttMaxRetry = int(iv)
	}
	if iv, ok := value.ToInt64(section["MqttQuitMillSec"]); ok {
		globals.MqttQuitMillSec = uint(iv)
	}
	if du, ok := value.ToDuration(section["ConfigTimeout"]); ok {
		globals.ConfigTimeout = du
	}
}

// LoadConfigByName 加载指定文件名的配置信息。
// 配置文件加载顺序：
// 1. 当前运行目录;
// 2. 目录：/etc/polyglot/;
// 3. 环境变量"POLYGLOT_CONFIG"指定的路径;
// 配置文件不存在时返回 ErrConfigNotExist。
func LoadConfigByName(fileName string) (map[string]interface{}, error) {
	searchConfig := func(files ...string) (f string, err error) {
		for _, file := range files {
			if "" == file {
				continue
			}
			if _, err := os.Stat(file); nil == err {
				return file, nil
			}
		}
		return "", ErrConfigNotExist
	}
	config := make(map[string]interface{})
	file, err := searchConfig(fileName, DefaultConfDir+fileName, os.Getenv(EnvKeyConfig))
	if nil != err {
		return config, err
	} else {
		log.Info("加载配置文件：", file)
	}
	if _, err := toml.DecodeFile(file, &config); nil != err {
		return config, errors.Wrapf(err, "读取配置文件(%s)出错", file)
	}
	return config, nil
}

// LoadConfig 加载默认文件名的配置。
func LoadConfig() (map[string]interface{}, error) {
	return LoadConfigByName(DefaultConfName)
}
