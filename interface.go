package polyglot

import (
	"context"
	"sync"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/nextabc-lab/polyglot-neato/util"
	"github.com/pkg/errors"
)

// Interface 通过MQTT与Polyglot通讯，是Host接口的实现。
// MQTT回调只负责投递任务，所有消息处理和节点启动都在同一个协程中串行执行。
type Interface struct {
	globals *Globals
	client  mqtt.Client

	mutex        sync.Mutex
	customData   CustomData
	customParams CustomData
	nodes        map[string]Node

	config util.Lazy
	tasks  chan func()
	// Shutdown
	stopContext context.Context
	stopCancel  context.CancelFunc
}

func NewInterface(globals *Globals) *Interface {
	checkRequired(globals.ProfileNum, "ProfileNum MUST be specified")
	checkRequired(globals.MqttBroker, "MqttBroker MUST be specified")
	opts := mqtt.NewClientOptions()
	opts.SetClientID(mqttClientId(globals.ProfileNum))
	will, _ := NewMessage(globals.ProfileNum, KeyConnected, false)
	opts.SetWill(TopicPolyglotConnection, string(will), 1, false)
	mqttSetOptions(opts, globals)
	return newInterface(globals, mqtt.NewClient(opts))
}

func newInterface(globals *Globals, client mqtt.Client) *Interface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Interface{
		globals:      globals,
		client:       client,
		customData:   make(CustomData),
		customParams: make(CustomData),
		nodes:        make(map[string]Node),
		config:       util.NewLazy(),
		tasks:        make(chan func(), 64),
		stopContext:  ctx,
		stopCancel:   cancel,
	}
}

// Start 连接Broker，订阅NodeServer的Topic，并开启消息处理协程
func (p *Interface) Start() error {
	log.Info("Mqtt客户端连接Broker: ", p.globals.MqttBroker)
	mqttAwaitConnection(p.client, p.globals.MqttMaxRetry)
	if !p.client.IsConnected() {
		return errors.WithMessage(ErrNotConnected, p.globals.MqttBroker)
	}
	topic := topicOfNodeServer(p.globals.ProfileNum)
	log.Info("订阅Polyglot消息: ", topic)
	token := p.client.Subscribe(topic, p.globals.MqttQoS, func(cli mqtt.Client, msg mqtt.Message) {
		payload := msg.Payload()
		p.post(func() {
			p.handle(payload)
		})
	})
	if token.Wait() && nil != token.Error() {
		return errors.WithMessage(token.Error(), "subscribe "+topic)
	}
	go p.loop()
	return p.send(KeyConnected, true)
}

// Stop 通知Polyglot断开，并关闭MQTT连接
func (p *Interface) Stop() {
	if p.client.IsConnected() {
		if err := p.send(KeyConnected, false); nil != err {
			log.Error("发送断开消息出错: ", err)
		}
		p.client.Unsubscribe(topicOfNodeServer(p.globals.ProfileNum))
		p.client.Disconnect(p.globals.MqttQuitMillSec)
	}
	p.stopCancel()
}

// Done 在Polyglot下发stop消息或调用Stop后关闭
func (p *Interface) Done() <-chan struct{} {
	return p.stopContext.Done()
}

// WaitConfig 等待Polyglot下发第一个config消息
func (p *Interface) WaitConfig(timeout time.Duration) error {
	if _, err := p.config.Take(timeout); nil != err {
		return errors.WithMessage(err, "wait polyglot config")
	}
	return nil
}

func (p *Interface) post(task func()) {
	select {
	case p.tasks <- task:
	case <-p.stopContext.Done():
	}
}

func (p *Interface) loop() {
	for {
		select {
		case task := <-p.tasks:
			task()
		case <-p.stopContext.Done():
			return
		}
	}
}

func (p *Interface) handle(payload []byte) {
	msg, err := ParseMessage(payload)
	if nil != err {
		log.Error("无法解析Polyglot消息: ", err)
		return
	}
	switch {
	case msg.Has(KeyConfig):
		var config configBody
		if err := msg.Decode(KeyConfig, &config); nil != err {
			log.Error("config消息出错: ", err)
			return
		}
		p.mutex.Lock()
		if nil != config.CustomData {
			p.customData = config.CustomData
		}
		if nil != config.CustomParams {
			p.customParams = config.CustomParams
		}
		p.mutex.Unlock()
		p.config.Store(config)

	case msg.Has(KeyCommand):
		var cmd Command
		if err := msg.Decode(KeyCommand, &cmd); nil != err {
			log.Error("command消息出错: ", err)
			return
		}
		p.mutex.Lock()
		node, ok := p.nodes[cmd.Address]
		p.mutex.Unlock()
		if !ok {
			log.Errorf("指令[%s]的目标节点不存在: %s", cmd.Cmd, cmd.Address)
			return
		}
		if err := dispatchCommand(node, cmd); nil != err {
			log.Errorf("节点[%s]执行指令[%s]出错: %s", cmd.Address, cmd.Cmd, err)
		}

	case msg.Has(KeyStop):
		log.Info("Polyglot请求停止NodeServer")
		p.stopCancel()

	case msg.Has(KeyResult):
		log.Debug("Polyglot结果消息: ", string(msg[KeyResult]))

	default:
		log.Debug("忽略Polyglot消息: ", string(payload))
	}
}

func (p *Interface) send(key string, body interface{}) error {
	data, err := NewMessage(p.globals.ProfileNum, key, body)
	if nil != err {
		return err
	}
	if !p.client.IsConnected() {
		return ErrNotConnected
	}
	return errors.WithMessage(
		mqttPublish(p.client, TopicPolyglotConnection, p.globals.MqttQoS, data),
		"publish "+key)
}

//// Host实现

func (p *Interface) InstallProfile() error {
	return p.send(KeyInstallProfile, installProfileBody{Reboot: false})
}

func (p *Interface) CustomData() CustomData {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.customData.Copy()
}

func (p *Interface) SaveCustomData(data CustomData) error {
	p.mutex.Lock()
	p.customData = data.Copy()
	p.mutex.Unlock()
	return p.send(KeyCustomData, data)
}

func (p *Interface) CustomParams() CustomData {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.customParams.Copy()
}

func (p *Interface) AddCustomParams(params CustomData) error {
	p.mutex.Lock()
	for k, v := range params {
		p.customParams[k] = copyValue(v)
	}
	all := p.customParams.Copy()
	p.mutex.Unlock()
	return p.send(KeyCustomParams, all)
}

func (p *Interface) ReportDriver(address string, driver Driver) error {
	return p.send(KeyStatus, statusBody{
		Address: address,
		Driver:  driver.Driver,
		Value:   driver.ValueString(),
		Uom:     driver.Uom,
	})
}

func (p *Interface) AddNode(node Node) error {
	p.mutex.Lock()
	p.nodes[node.Address()] = node
	p.mutex.Unlock()
	if err := p.send(KeyAddNode, addNodeBody{Nodes: []NodeDef{NodeDefOf(node)}}); nil != err {
		return err
	}
	p.post(node.Start)
	return nil
}
