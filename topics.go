package polyglot

import (
	"fmt"
	"strings"
)

const (
	prefixPolyglot = "udi/polyglot/"

	// NodeServer向Polyglot发送消息的Topic
	TopicPolyglotConnection = prefixPolyglot + "connections/polyglot"
)

// topicOfNodeServer 返回Polyglot向指定槽位NodeServer下发消息的Topic
func topicOfNodeServer(profileNum int) string {
	return fmt.Sprintf(prefixPolyglot+"ns/%d", profileNum)
}

func checkTopic(topic string) {
	if strings.HasPrefix(topic, "/") {
		log.Panicf("Topic MUST NOT starts with '/', was: %s", topic)
	}
}
