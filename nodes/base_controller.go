package nodes

import (
	polyglot "github.com/nextabc-lab/polyglot-neato"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 状态槽位
const (
	DriverStatus       = "ST"
	DriverVersionMajor = "GV1"
	DriverVersionMinor = "GV2"
	DriverDebugMode    = "GV5"
)

// 指令
const (
	CmdSetDebugMode  = "SET_DM"
	CmdDiscover      = "DISCOVER"
	CmdUpdateProfile = "UPDATE_PROFILE"
)

// 自定义数据和参数的Key
const (
	KeyProfileInfo = "profile_info"
	KeyDebugMode   = "debugMode"
)

const DefaultControllerId = "baseController"

type ControllerOptions struct {
	Id      string // 节点定义ID
	Address string
	Name    string

	ServerFile         string
	ProfileVersionFile string

	// Discover 处理DISCOVER指令，为nil时不做任何操作
	Discover func()

	Log      *zap.SugaredLogger
	LogLevel polyglot.LevelSink
}

// BaseController 是NodeServer的控制器节点：报告版本号和日志级别，并维护Profile的安装。
type BaseController struct {
	opts  ControllerOptions
	host  polyglot.Host
	log   *zap.SugaredLogger
	level polyglot.LevelSink

	debugMode   int
	profileInfo ProfileInfo
	serverData  *ServerDescriptor
}

// NewBaseController 创建控制器并读取server.json。读取失败时使用默认版本号，不会返回错误。
func NewBaseController(host polyglot.Host, opts ControllerOptions) *BaseController {
	if "" == opts.Id {
		opts.Id = DefaultControllerId
	}
	if "" == opts.Address {
		opts.Address = "controller"
	}
	if "" == opts.Name {
		opts.Name = "Controller"
	}
	if "" == opts.ServerFile {
		opts.ServerFile = polyglot.DefaultServerFile
	}
	if "" == opts.ProfileVersionFile {
		opts.ProfileVersionFile = polyglot.DefaultProfileVersionFile
	}
	if nil == opts.Log {
		opts.Log = polyglot.ZapSugarLogger
	}
	if nil == opts.LogLevel {
		opts.LogLevel = polyglot.LogLevel()
	}
	c := &BaseController{
		opts:      opts,
		host:      host,
		log:       opts.Log.Named(opts.Id),
		level:     opts.LogLevel,
		debugMode: DefaultDebugMode,
	}
	if data, err := LoadServerDescriptor(opts.ServerFile, c.log); nil != err {
		c.serverData = DefaultServerDescriptor()
	} else {
		c.serverData = data
	}
	return c
}

func (c *BaseController) Address() string {
	return c.opts.Address
}

func (c *BaseController) Primary() string {
	return c.opts.Address
}

func (c *BaseController) Name() string {
	return c.opts.Name
}

func (c *BaseController) Id() string {
	return c.opts.Id
}

// Drivers ST和GV1、GV2用于向ISY报告状态，不能删除。
func (c *BaseController) Drivers() []polyglot.Driver {
	return []polyglot.Driver{
		{Driver: DriverStatus, Value: 0, Uom: polyglot.UomBoolean},
		{Driver: DriverVersionMajor, Value: 0, Uom: polyglot.UomNone},
		{Driver: DriverVersionMinor, Value: 0, Uom: polyglot.UomNone},
		{Driver: DriverDebugMode, Value: DefaultDebugMode, Uom: polyglot.UomIndex},
	}
}

func (c *BaseController) Commands() map[string]polyglot.CommandFunc {
	return map[string]polyglot.CommandFunc{
		CmdSetDebugMode:  c.cmdSetDebugMode,
		CmdDiscover:      c.cmdDiscover,
		CmdUpdateProfile: c.cmdInstallProfile,
	}
}

// Start 检查Profile，然后报告版本号、日志级别和在线状态。
func (c *BaseController) Start() {
	c.CheckProfile()
	c.SetDriver(DriverVersionMajor, c.serverData.VersionMajor)
	c.SetDriver(DriverVersionMinor, c.serverData.VersionMinor)
	c.SetDebugMode(c.host.CustomParams()[KeyDebugMode])
	c.SetDriver(DriverStatus, 1)
}

// SetDriver 向Polyglot报告状态值，单位取自Drivers定义。
func (c *BaseController) SetDriver(driver string, value interface{}) {
	uom := polyglot.UomNone
	for _, d := range c.Drivers() {
		if d.Driver == driver {
			uom = d.Uom
			break
		}
	}
	if err := c.host.ReportDriver(c.Address(), polyglot.Driver{Driver: driver, Value: value, Uom: uom}); nil != err {
		c.lError("set_driver", errors.WithMessagef(err, "%s=%v", driver, value))
	}
}

// CheckProfile 当version.txt与已保存的Profile版本不同时，请求Polyglot重新安装Profile，
// 并保存当前版本。
func (c *BaseController) CheckProfile() {
	c.profileInfo = ReadProfileInfo(c.opts.ProfileVersionFile, c.log)
	err := polyglot.UpdateCustomData(c.host, func(cd polyglot.CustomData) (polyglot.CustomData, error) {
		c.lInfo("check_profile", "profile_info=%v customData=%v", c.profileInfo.customData(), cd)
		updated, update := ReconcileProfile(c.profileInfo, cd)
		if update {
			if err := c.host.InstallProfile(); nil != err {
				c.lError("check_profile", err)
			}
		}
		c.lInfo("check_profile", "update_profile=%v", update)
		return updated, nil
	})
	if nil != err {
		c.lError("check_profile", err)
	}
}

func (c *BaseController) Discover() {
	if nil != c.opts.Discover {
		c.opts.Discover()
	}
}

// ServerData 返回server.json的描述
func (c *BaseController) ServerData() *ServerDescriptor {
	return c.serverData
}

// ProfileInfo 返回最近一次CheckProfile读取的版本
func (c *BaseController) ProfileInfo() ProfileInfo {
	return c.profileInfo
}

////

func (c *BaseController) cmdInstallProfile(cmd polyglot.Command) error {
	c.lInfo("cmd_install_profile", "Profile update requested")
	return c.host.InstallProfile()
}

func (c *BaseController) cmdSetDebugMode(cmd polyglot.Command) error {
	c.lInfo("cmd_set_debug_mode", "%v", cmd.Value)
	c.SetDebugMode(cmd.Value)
	return nil
}

func (c *BaseController) cmdDiscover(cmd polyglot.Command) error {
	c.Discover()
	return nil
}

func (c *BaseController) lInfo(name, format string, args ...interface{}) {
	c.log.Infof(name+": "+format, args...)
}

func (c *BaseController) lError(name string, err error) {
	c.log.Errorf("%s: %s", name, err)
}
