// Package source configures the connector that consumes RabbitMQ queues
// into a Kafka topic.
package source

import (
	"fmt"
	"strings"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/config"
	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/connector/kafka"
	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/connector/rabbitmq"
	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/core"
)

const (
	TopicKey              = "kafka.topic"
	QueueKey              = "rabbitmq.queue"
	ExchangeDurableKey    = "rabbitmq.exchange.durable"
	ExchangeAutoDeleteKey = "rabbitmq.exchange.autodelete"
	PrefetchCountKey      = "rabbitmq.prefetch.count"
	PrefetchGlobalKey     = "rabbitmq.prefetch.global"
	MessageConverterKey   = "message.converter"
	ExchangeKey           = "rabbitmq.exchange"
	RoutingKeyKey         = "rabbitmq.routing.key"
	QueueTTLKey           = "rabbitmq.queue.ttl"
)

var schema = rabbitmq.Schema().MustDefine(
	config.Setting{Name: TopicKey, Type: config.String, Required: true, Validator: kafka.TopicName(), Importance: config.High,
		Doc: "Kafka topic to write the messages to."},
	config.Setting{Name: ExchangeDurableKey, Type: config.Bool, Default: false, Importance: config.High,
		Doc: "Set RabbitMQ exchange durable flag."},
	config.Setting{Name: ExchangeAutoDeleteKey, Type: config.Bool, Default: true, Importance: config.High,
		Doc: "Set RabbitMQ exchange auto_delete flag."},
	config.Setting{Name: PrefetchCountKey, Type: config.Int, Default: 0, Validator: config.Tag("gte=0,lte=65535"), Importance: config.Medium,
		Doc: "Maximum number of messages that the server will deliver, 0 if unlimited."},
	config.Setting{Name: PrefetchGlobalKey, Type: config.Bool, Default: false, Importance: config.Medium,
		Doc: "True if the prefetch limit applies to the entire channel rather than each consumer."},
	config.Setting{Name: QueueKey, Type: config.List, Required: true, Validator: config.All(config.Tag("min=1"), config.NonEmptyEntries()), Importance: config.High,
		Doc: "Queues to consume from, in order."},
	config.Setting{Name: MessageConverterKey, Type: config.String, Default: kafka.ConverterMessage, Validator: ConverterName(), Importance: config.Medium,
		Doc: "Converter to compose the Kafka message: message, bytes or string."},
	config.Setting{Name: ExchangeKey, Type: config.String, Required: true, Importance: config.High,
		Doc: "Exchange the queues are bound to."},
	config.Setting{Name: RoutingKeyKey, Type: config.String, Required: true, Importance: config.High,
		Doc: "Routing key used to bind the queues to the exchange."},
	config.Setting{Name: QueueTTLKey, Type: config.Int, Default: 0, Validator: config.Tag("gte=0"), Importance: config.High,
		Doc: "Message TTL of the declared queues in milliseconds, 0 for none."},
)

// Schema returns the common settings extended with the source keys.
func Schema() *config.Schema { return schema.Clone() }

type Config struct {
	rabbitmq.Config `yaml:",inline"`

	KafkaTopic         string   `yaml:"kafkaTopic"`
	Queues             []string `yaml:"queues,flow"`
	ExchangeDurable    bool     `yaml:"exchangeDurable"`
	ExchangeAutoDelete bool     `yaml:"exchangeAutoDelete"`
	PrefetchCount      int      `yaml:"prefetchCount"`
	PrefetchGlobal     bool     `yaml:"prefetchGlobal"`
	MessageConverter   string   `yaml:"messageConverter"`
	Exchange           string   `yaml:"exchange"`
	RoutingKey         string   `yaml:"routingKey"`
	QueueTTL           int      `yaml:"queueTtlMs"`
}

func NewConfig(raw map[string]any) (*Config, error) {
	v, err := schema.Bind(raw)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq source config: %w", err)
	}
	base, err := rabbitmq.FromValues(v)
	if err != nil {
		return nil, err
	}
	return &Config{
		Config:             *base,
		KafkaTopic:         v.String(TopicKey),
		Queues:             v.List(QueueKey),
		ExchangeDurable:    v.Bool(ExchangeDurableKey),
		ExchangeAutoDelete: v.Bool(ExchangeAutoDeleteKey),
		PrefetchCount:      v.Int(PrefetchCountKey),
		PrefetchGlobal:     v.Bool(PrefetchGlobalKey),
		MessageConverter:   v.String(MessageConverterKey),
		Exchange:           v.String(ExchangeKey),
		RoutingKey:         v.String(RoutingKeyKey),
		QueueTTL:           v.Int(QueueTTLKey),
	}, nil
}

// ConverterName accepts the names of registered converters.
func ConverterName() config.Validator {
	return config.ValidatorFunc(func(key string, value any) error {
		s, _ := value.(string)
		if !core.HasConverter(s) {
			return config.Invalid(key, value, "must be one of ["+strings.Join(core.Converters(), ", ")+"]")
		}
		return nil
	})
}

// Converter builds the configured converter, wrapped with logging.
func (c *Config) Converter() (core.Converter, error) {
	conv, err := core.BuildConverter(c.MessageConverter)
	if err != nil {
		return nil, err
	}
	return core.ConverterWithLog{Name: c.MessageConverter, Next: conv}, nil
}
