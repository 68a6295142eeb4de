package polyglot

import (
	"errors"
	"sync"
)

var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotConnected   = errors.New("not connected to polyglot")
)

// CustomData 是Polyglot为每个NodeServer保存的Key-Value文档。
type CustomData map[string]interface{}

// Copy 返回深拷贝，嵌套的Map和数组也被复制。
func (cd CustomData) Copy() CustomData {
	out := make(CustomData, len(cd))
	for k, v := range cd {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case CustomData:
		return t.Copy()
	case map[string]interface{}:
		return map[string]interface{}(CustomData(t).Copy())
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}

// Host 是Polyglot主机提供给节点的能力
type Host interface {
	// InstallProfile 请求Polyglot重新安装Profile
	InstallProfile() error

	// CustomData 返回自定义数据的快照
	CustomData() CustomData

	// SaveCustomData 整体保存自定义数据
	SaveCustomData(data CustomData) error

	// CustomParams 返回自定义参数的快照
	CustomParams() CustomData

	// AddCustomParams 合并自定义参数并保存
	AddCustomParams(params CustomData) error

	// ReportDriver 向Polyglot报告节点的状态值
	ReportDriver(address string, driver Driver) error

	// AddNode 向Polyglot注册节点
	AddNode(node Node) error
}

// UpdateCustomData 以读取-修改-写回的方式更新自定义数据。
// fn 收到的是快照的副本；返回错误时不写回。
func UpdateCustomData(host Host, fn func(data CustomData) (CustomData, error)) error {
	updated, err := fn(host.CustomData().Copy())
	if nil != err {
		return err
	}
	return host.SaveCustomData(updated)
}

//// MemoryHost实现

// MemoryHost 是进程内的Host实现，记录所有调用。用于测试和DryRun模式。
type MemoryHost struct {
	mutex        sync.Mutex
	customData   CustomData
	customParams CustomData
	nodes        map[string]Node
	drivers      map[string]map[string]Driver

	// InstallProfileErr 不为nil时，InstallProfile返回该错误
	InstallProfileErr error
	// InstallProfileCount 记录InstallProfile的调用次数
	InstallProfileCount int
	// Reports 按顺序记录所有ReportDriver调用
	Reports []Report
}

// Report 是一次ReportDriver调用
type Report struct {
	Address string
	Driver
}

func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		customData:   make(CustomData),
		customParams: make(CustomData),
		nodes:        make(map[string]Node),
		drivers:      make(map[string]map[string]Driver),
	}
}

func (h *MemoryHost) InstallProfile() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.InstallProfileCount++
	log.Debug("MemoryHost: installprofile")
	return h.InstallProfileErr
}

func (h *MemoryHost) CustomData() CustomData {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.customData.Copy()
}

func (h *MemoryHost) SaveCustomData(data CustomData) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.customData = data.Copy()
	return nil
}

func (h *MemoryHost) CustomParams() CustomData {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.customParams.Copy()
}

func (h *MemoryHost) AddCustomParams(params CustomData) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for k, v := range params {
		h.customParams[k] = copyValue(v)
	}
	return nil
}

func (h *MemoryHost) ReportDriver(address string, driver Driver) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.nodes[address]; !ok {
		return ErrNodeNotFound
	}
	h.drivers[address][driver.Driver] = driver
	h.Reports = append(h.Reports, Report{Address: address, Driver: driver})
	return nil
}

func (h *MemoryHost) AddNode(node Node) error {
	h.mutex.Lock()
	slots := make(map[string]Driver)
	for _, d := range node.Drivers() {
		slots[d.Driver] = d
	}
	h.nodes[node.Address()] = node
	h.drivers[node.Address()] = slots
	h.mutex.Unlock()
	// Polyglot接收节点后启动节点
	node.Start()
	return nil
}

// DriverValue 返回节点状态槽位的当前值
func (h *MemoryHost) DriverValue(address, driver string) (interface{}, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	d, ok := h.drivers[address][driver]
	return d.Value, ok
}

// Dispatch 模拟Polyglot向节点下发指令
func (h *MemoryHost) Dispatch(cmd Command) error {
	h.mutex.Lock()
	node, ok := h.nodes[cmd.Address]
	h.mutex.Unlock()
	if !ok {
		return ErrNodeNotFound
	}
	return dispatchCommand(node, cmd)
}

////

func dispatchCommand(node Node, cmd Command) error {
	fn, ok := node.Commands()[cmd.Cmd]
	if !ok {
		log.Errorf("节点[%s]不支持指令: %s", node.Address(), cmd.Cmd)
		return ErrUnknownCommand
	}
	return fn(cmd)
}
