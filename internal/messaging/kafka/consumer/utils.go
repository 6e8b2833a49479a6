package consumer

import "github.com/segmentio/kafka-go"

const (
	HeaderEventType = "event_type"
	EventDeleteCart = "DELETE_CART"
)

func getHeader(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
