package rabbitmq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/util"
	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrNotOpen = errors.New("rabbitmq connector is not open")

// Connector holds one broker connection opened from a ConnectionFactory
// and a channel on it. It does not reconnect.
type Connector struct {
	factory ConnectionFactory

	conn *amqp.Connection
	ch   *amqp.Channel

	mu     sync.RWMutex
	opened bool
}

func NewConnector(f ConnectionFactory) *Connector {
	return &Connector{factory: f}
}

func (c *Connector) Factory() ConnectionFactory { return c.factory }

// Open dials the broker and opens a channel. Calling Open on an open
// connector is a no-op.
func (c *Connector) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opened {
		return nil
	}

	conn, err := c.factory.Dial()
	if err != nil {
		return fmt.Errorf("rabbitmq dial %s: %w", c.factory, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("create channel: %w", err)
	}

	c.conn = conn
	c.ch = ch
	c.opened = true
	util.App.Debug().Str("broker", c.factory.String()).Bool("tls", c.factory.UsesTLS()).Msg("rabbitmq connection opened")
	return nil
}

func (c *Connector) Channel() (*amqp.Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.opened {
		return nil, ErrNotOpen
	}
	return c.ch, nil
}

// Close closes the channel and then the connection, waiting at most the
// factory's ShutdownTimeout for the broker to acknowledge.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.opened {
		return nil
	}

	var firstErr error
	if c.ch != nil {
		if err := c.ch.Close(); err != nil {
			firstErr = err
		}
		c.ch = nil
	}
	if c.conn != nil {
		var err error
		if c.factory.ShutdownTimeout > 0 {
			err = c.conn.CloseDeadline(time.Now().Add(c.factory.ShutdownTimeout))
		} else {
			err = c.conn.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
		c.conn = nil
	}
	c.opened = false
	if firstErr != nil {
		util.App.Warn().Err(firstErr).Msg("error closing rabbitmq connection")
	}
	util.App.Debug().Str("broker", c.factory.String()).Msg("rabbitmq connection closed")
	return firstErr
}
