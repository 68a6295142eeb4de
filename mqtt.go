package polyglot

import (
	"fmt"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
)

const MqttClientIdHeader = "NodeServer"

func mqttSetOptions(opts *mqtt.ClientOptions, globals *Globals) {
	opts.AddBroker(globals.MqttBroker)
	opts.SetKeepAlive(globals.MqttKeepAlive)
	opts.SetPingTimeout(globals.MqttPingTimeout)
	opts.SetAutoReconnect(globals.MqttAutoReconnect)
	opts.SetConnectTimeout(globals.MqttConnectTimeout)
	opts.SetCleanSession(globals.MqttCleanSession)
	opts.SetMaxReconnectInterval(globals.MqttReconnectInterval)
	if "" != globals.MqttUsername && "" != globals.MqttPassword {
		opts.SetUsername(globals.MqttUsername)
		opts.SetPassword(globals.MqttPassword)
	}
}

func mqttClientId(profileNum int) string {
	return fmt.Sprintf("%s_%d", MqttClientIdHeader, profileNum)
}

// mqttAwaitConnection 连续尝试连接Broker，每次失败后等待时间递增
func mqttAwaitConnection(client mqtt.Client, maxRetry int) {
	timer := time.NewTimer(time.Millisecond)
	defer timer.Stop()
	for i := 1; i <= maxRetry; i++ {
		<-timer.C
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			if i == maxRetry {
				log.Errorf("[%d] Mqtt客户端连接失败，最大次数：%v", i, token.Error())
			} else {
				log.Debugf("[%d] Mqtt客户端尝试重新连接，失败：%v", i, token.Error())
			}
			timer.Reset(time.Second * time.Duration(i))
		} else {
			log.Info("Mqtt客户端连接成功")
			break
		}
	}
}

// mqttPublish 发送消息并等待发送结果
func mqttPublish(client mqtt.Client, topic string, qos uint8, payload []byte) error {
	checkTopic(topic)
	token := client.Publish(topic, qos, false, payload)
	if token.Wait() && nil != token.Error() {
		return token.Error()
	}
	return nil
}
