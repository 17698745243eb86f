package kafka

import (
	"fmt"

	"github.com/IBM/sarama"
)

// DLQTopic 死信队列 topic
func DLQTopic(mainTopic string) string {
	return fmt.Sprintf("%s.dlq", mainTopic)
}

// SendDLQ 原样转发到死信队列，并带上失败原因
func SendDLQ(p *Producer, msg *sarama.ConsumerMessage, cause error) error {
	headers := make([]sarama.RecordHeader, 0, len(msg.Headers)+1)
	for _, h := range msg.Headers {
		if h != nil {
			headers = append(headers, *h)
		}
	}
	headers = append(headers, sarama.RecordHeader{Key: []byte("x-error"), Value: []byte(cause.Error())})
	return p.SendSync(DLQTopic(msg.Topic), msg.Key, msg.Value, headers...)
}
