package sink

import (
	"context"
	"fmt"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"
	kafka "github.com/segmentio/kafka-go"
)

// HeaderTopic carries the rendered topic template on every publishing.
const HeaderTopic = "kafka.topic"

const defaultContentType = "application/octet-stream"

// Publisher is the part of *amqp.Channel the sink needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publishing builds the AMQP message for a Kafka record. Record headers
// are copied first; configured headers and HeaderTopic override them.
func (c *Config) Publishing(m kafka.Message) amqp.Publishing {
	hdrs := amqp.Table{}
	for _, h := range m.Headers {
		hdrs[h.Key] = string(h.Value)
	}
	for k, v := range c.Headers {
		hdrs[k] = v
	}
	hdrs[HeaderTopic] = c.Topic.Render(m)

	p := amqp.Publishing{
		Headers:      hdrs,
		ContentType:  defaultContentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    m.Time,
		Body:         m.Value,
	}
	if len(m.Key) > 0 {
		p.MessageId = string(m.Key)
	}
	if c.Expiration != NoExpiration {
		p.Expiration = strconv.Itoa(c.Expiration)
	}
	return p
}

// Publish sends m to the configured exchange and routing key.
func (c *Config) Publish(ctx context.Context, p Publisher, m kafka.Message) error {
	if err := p.PublishWithContext(ctx, c.Exchange, c.RoutingKey, false, false, c.Publishing(m)); err != nil {
		return fmt.Errorf("publish to exchange %q with routing key %q: %w", c.Exchange, c.RoutingKey, err)
	}
	return nil
}
