package polyglot

import (
	"encoding/json"
	"strconv"
)

// Uom 单位编号，见ISY文档
const (
	UomBoolean = 2
	UomIndex   = 25
	UomNone    = 56
)

// Driver 是节点向Polyglot报告的状态槽位
type Driver struct {
	Driver string      `json:"driver"`
	Value  interface{} `json:"value"`
	Uom    int         `json:"uom"`
}

// ValueString 返回Polyglot协议中使用的字符串值
func (d Driver) ValueString() string {
	switch v := d.Value.(type) {
	case nil:
		return "0"
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}

// Command 是Polyglot下发给节点的指令
type Command struct {
	Address string      `json:"address"`
	Cmd     string      `json:"cmd"`
	Value   interface{} `json:"value,omitempty"`
	Uom     interface{} `json:"uom,omitempty"`
	Query   CustomData  `json:"query,omitempty"`
}

// CommandFunc 处理一个指令，返回Polyglot端的执行结果
type CommandFunc func(cmd Command) error

// Node 是向Polyglot注册的节点能力接口
type Node interface {
	NeedLifecycle

	// Address 节点地址，在NodeServer内唯一
	Address() string

	// Primary 父节点地址，Controller的Primary是自身
	Primary() string

	// Name 节点的显示名称
	Name() string

	// Id 节点定义ID，对应Profile中的nodedef
	Id() string

	// Drivers 返回节点的状态槽位定义
	Drivers() []Driver

	// Commands 返回指令名称到处理函数的映射
	Commands() map[string]CommandFunc
}

// NeedLifecycle 生命周期接口。节点被Polyglot接收后调用Start。
type NeedLifecycle interface {
	Start()
}

// NodeDef 是addnode消息中描述节点的结构
type NodeDef struct {
	Address   string   `json:"address"`
	Name      string   `json:"name"`
	NodeDefId string   `json:"node_def_id"`
	Primary   string   `json:"primary"`
	Drivers   []Driver `json:"drivers"`
	Hint      string   `json:"hint"`
}

// NodeDefOf 生成节点的addnode描述
func NodeDefOf(n Node) NodeDef {
	return NodeDef{
		Address:   n.Address(),
		Name:      n.Name(),
		NodeDefId: n.Id(),
		Primary:   n.Primary(),
		Drivers:   n.Drivers(),
		Hint:      "0x00000000",
	}
}

type addNodeBody struct {
	Nodes []NodeDef `json:"nodes"`
}
