// Package sink configures the connector that publishes Kafka records to a
// RabbitMQ exchange.
package sink

import (
	"fmt"
	"strings"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/config"
	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/connector/kafka"
	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/connector/rabbitmq"
)

const (
	TopicsKey     = "topics"
	ExchangeKey   = "rabbitmq.exchange"
	RoutingKeyKey = "rabbitmq.routing.key"
	HeadersKey    = "rabbitmq.headers"
	ExpirationKey = "rabbitmq.expiration.ms"
)

// NoExpiration leaves the expiration property unset on published messages.
const NoExpiration = -1

var schema = rabbitmq.Schema().MustDefine(
	config.Setting{Name: TopicsKey, Type: config.String, Required: true, Validator: kafka.Template(), Importance: config.High,
		Doc: "Kafka topic to read the messages from. May reference ${topic}, ${partition}, ${offset} and ${key}."},
	config.Setting{Name: ExchangeKey, Type: config.String, Default: "", Importance: config.Medium,
		Doc: "Exchange to publish the messages on."},
	config.Setting{Name: RoutingKeyKey, Type: config.String, Required: true, Importance: config.High,
		Doc: "Routing key used for publishing the messages."},
	config.Setting{Name: HeadersKey, Type: config.String, Validator: HeaderValidator(), Importance: config.Low,
		Doc: "Headers to set on outbound messages, as headername1:headervalue1,headername2:headervalue2."},
	config.Setting{Name: ExpirationKey, Type: config.Int, Default: NoExpiration, Validator: ExpirationValidator(), Importance: config.Low,
		Doc: "The expiration message property in milliseconds >= 0, or -1 to leave it unset."},
)

// Schema returns the common settings extended with the sink keys.
func Schema() *config.Schema { return schema.Clone() }

type Config struct {
	rabbitmq.Config `yaml:",inline"`

	Topic      kafka.TopicTemplate `yaml:"topics"`
	Exchange   string              `yaml:"exchange"`
	RoutingKey string              `yaml:"routingKey"`
	Headers    map[string]string   `yaml:"headers,omitempty"`
	Expiration int                 `yaml:"expirationMs"`
}

func NewConfig(raw map[string]any) (*Config, error) {
	v, err := schema.Bind(raw)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq sink config: %w", err)
	}
	base, err := rabbitmq.FromValues(v)
	if err != nil {
		return nil, err
	}
	topic, err := kafka.ParseTopicTemplate(v.String(TopicsKey))
	if err != nil {
		return nil, fmt.Errorf("rabbitmq sink config: %w", err)
	}
	headers, err := ParseHeaders(v.String(HeadersKey))
	if err != nil {
		return nil, fmt.Errorf("rabbitmq sink config: %w", err)
	}
	return &Config{
		Config:     *base,
		Topic:      topic,
		Exchange:   v.String(ExchangeKey),
		RoutingKey: v.String(RoutingKeyKey),
		Headers:    headers,
		Expiration: v.Int(ExpirationKey),
	}, nil
}

// ExpirationValidator accepts integers >= -1; -1 is NoExpiration.
func ExpirationValidator() config.Validator {
	return config.ValidatorFunc(func(key string, value any) error {
		n, ok := value.(int)
		if !ok {
			return config.Invalid(key, value, "must be an integer")
		}
		if n < NoExpiration {
			return config.Invalid(key, value, "must be >= 0")
		}
		return nil
	})
}

// HeaderValidator checks the name:value list syntax of HeadersKey.
func HeaderValidator() config.Validator {
	return config.ValidatorFunc(func(key string, value any) error {
		s, _ := value.(string)
		if _, err := ParseHeaders(s); err != nil {
			return config.Invalid(key, value, err.Error())
		}
		return nil
	})
}

// ParseHeaders reads "name1:value1,name2:value2". Each value is split from
// its name on the first ':' and kept verbatim; a later name overrides an
// earlier one. The empty string yields an empty map.
func ParseHeaders(s string) (map[string]string, error) {
	out := map[string]string{}
	if s == "" {
		return out, nil
	}
	for i, entry := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("header %d (%q): expected name:value", i, entry)
		}
		if name == "" {
			return nil, fmt.Errorf("header %d (%q): name is empty", i, entry)
		}
		out[name] = value
	}
	return out, nil
}
