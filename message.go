package polyglot

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Polyglot消息的Key
const (
	KeyConnected      = "connected"
	KeyStatus         = "status"
	KeyInstallProfile = "installprofile"
	KeyCustomData     = "customdata"
	KeyCustomParams   = "customparams"
	KeyAddNode        = "addnode"
	KeyConfig         = "config"
	KeyCommand        = "command"
	KeyStop           = "stop"
	KeyResult         = "result"
)

// Message 是NodeServer与Polyglot之间传递的JSON消息。
// 每个消息包含一个业务Key，发往Polyglot的消息另外带有node字段指明槽位号。
type Message map[string]json.RawMessage

// NewMessage 创建发往Polyglot的消息
func NewMessage(profileNum int, key string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if nil != err {
		return nil, errors.WithMessage(err, "encode "+key)
	}
	node, _ := json.Marshal(profileNum)
	return json.Marshal(Message{
		"node": node,
		key:    data,
	})
}

// ParseMessage 解析Polyglot下发的消息
func ParseMessage(payload []byte) (Message, error) {
	msg := make(Message)
	if err := json.Unmarshal(payload, &msg); nil != err {
		return nil, errors.Wrap(err, "parse polyglot message")
	}
	return msg, nil
}

// Has 返回消息是否包含指定Key
func (m Message) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Decode 将指定Key的消息体解码到out中
func (m Message) Decode(key string, out interface{}) error {
	raw, ok := m[key]
	if !ok {
		return errors.Errorf("message has no %q", key)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return errors.WithMessage(decoder.Decode(out), "decode "+key)
}

////

// statusBody 是status消息的消息体
type statusBody struct {
	Address string `json:"address"`
	Driver  string `json:"driver"`
	Value   string `json:"value"`
	Uom     int    `json:"uom"`
}

// configBody 是config消息中本NodeServer关心的部分
type configBody struct {
	CustomData   CustomData `json:"customData"`
	CustomParams CustomData `json:"customParams"`
}

// installProfileBody 是installprofile消息的消息体
type installProfileBody struct {
	Reboot bool `json:"reboot"`
}
