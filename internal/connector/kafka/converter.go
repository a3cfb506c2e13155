package kafka

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/core"
	amqp "github.com/rabbitmq/amqp091-go"
	kafka "github.com/segmentio/kafka-go"
)

// Registered converter names.
const (
	ConverterMessage = "message"
	ConverterBytes   = "bytes"
	ConverterString  = "string"
)

// Header keys carrying broker metadata on records built by MessageConverter.
const (
	HeaderExchange      = "rabbitmq.exchange"
	HeaderRoutingKey    = "rabbitmq.routing.key"
	HeaderDeliveryTag   = "rabbitmq.delivery.tag"
	HeaderRedelivered   = "rabbitmq.redelivered"
	HeaderContentType   = "rabbitmq.content.type"
	HeaderCorrelationID = "rabbitmq.correlation.id"
	HeaderReplyTo       = "rabbitmq.reply.to"
	HeaderType          = "rabbitmq.type"
	HeaderAppID         = "rabbitmq.app.id"
)

var ErrInvalidUTF8 = errors.New("message body is not valid UTF-8")

func init() {
	core.RegisterConverter(ConverterMessage, func() core.Converter { return MessageConverter{} })
	core.RegisterConverter(ConverterBytes, func() core.Converter { return BytesConverter{} })
	core.RegisterConverter(ConverterString, func() core.Converter { return StringConverter{} })
}

// MessageConverter keeps the whole delivery: body as value, message id as
// key, AMQP headers and broker metadata as record headers.
type MessageConverter struct{}

func (MessageConverter) Convert(topic string, d amqp.Delivery) (kafka.Message, error) {
	m := kafka.Message{Topic: topic, Value: d.Body, Time: d.Timestamp}
	if d.MessageId != "" {
		m.Key = []byte(d.MessageId)
	}

	keys := make([]string, 0, len(d.Headers))
	for k := range d.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.Headers = append(m.Headers, kafka.Header{Key: k, Value: []byte(headerString(d.Headers[k]))})
	}

	meta := []struct{ key, value string }{
		{HeaderExchange, d.Exchange},
		{HeaderRoutingKey, d.RoutingKey},
		{HeaderDeliveryTag, strconv.FormatUint(d.DeliveryTag, 10)},
		{HeaderRedelivered, strconv.FormatBool(d.Redelivered)},
		{HeaderContentType, d.ContentType},
		{HeaderCorrelationID, d.CorrelationId},
		{HeaderReplyTo, d.ReplyTo},
		{HeaderType, d.Type},
		{HeaderAppID, d.AppId},
	}
	for _, h := range meta {
		if h.value == "" {
			continue
		}
		m.Headers = append(m.Headers, kafka.Header{Key: h.key, Value: []byte(h.value)})
	}
	return m, nil
}

// BytesConverter copies the body and nothing else.
type BytesConverter struct{}

func (BytesConverter) Convert(topic string, d amqp.Delivery) (kafka.Message, error) {
	return kafka.Message{Topic: topic, Value: d.Body}, nil
}

// StringConverter is BytesConverter for text bodies.
type StringConverter struct{}

func (StringConverter) Convert(topic string, d amqp.Delivery) (kafka.Message, error) {
	if !utf8.Valid(d.Body) {
		return kafka.Message{}, fmt.Errorf("delivery %d: %w", d.DeliveryTag, ErrInvalidUTF8)
	}
	return kafka.Message{Topic: topic, Value: d.Body}, nil
}

func headerString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
