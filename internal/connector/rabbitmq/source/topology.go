package source

import (
	"fmt"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/util"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeKind is the type of the exchange declared for the queues.
const ExchangeKind = amqp.ExchangeTopic

// Channel is the part of *amqp.Channel used to declare the topology.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
}

// QueueArgs are the arguments every queue is declared with.
func (c *Config) QueueArgs() amqp.Table {
	args := amqp.Table{}
	if c.QueueTTL > 0 {
		args["x-message-ttl"] = int32(c.QueueTTL) // #nosec G115 - Int settings fit in int32
	}
	return args
}

// DeclareTopology declares the exchange, then declares and binds each
// queue in order, then applies the prefetch limit.
func (c *Config) DeclareTopology(ch Channel) error {
	if err := ch.ExchangeDeclare(c.Exchange, ExchangeKind, c.ExchangeDurable, c.ExchangeAutoDelete, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %q: %w", c.Exchange, err)
	}
	for _, q := range c.Queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, c.QueueArgs()); err != nil {
			return fmt.Errorf("declare queue %q: %w", q, err)
		}
		if err := ch.QueueBind(q, c.RoutingKey, c.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %q to exchange %q: %w", q, c.Exchange, err)
		}
	}
	if err := ch.Qos(c.PrefetchCount, 0, c.PrefetchGlobal); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	util.App.Debug().
		Str("exchange", c.Exchange).
		Strs("queues", c.Queues).
		Int("prefetch", c.PrefetchCount).
		Msg("source topology declared")
	return nil
}

// RecoverTopology redeclares the topology on a fresh channel after a
// reconnect, unless topology recovery is disabled.
func (c *Config) RecoverTopology(ch Channel) error {
	if !c.TopologyRecovery {
		return nil
	}
	return c.DeclareTopology(ch)
}
