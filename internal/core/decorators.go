package core

import (
	"time"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/util"
	amqp "github.com/rabbitmq/amqp091-go"
	kafka "github.com/segmentio/kafka-go"
)

// ConverterWithLog logs each conversion at trace level and failures at
// warn level.
type ConverterWithLog struct {
	Name string
	Next Converter
}

func (d ConverterWithLog) Convert(topic string, dl amqp.Delivery) (kafka.Message, error) {
	t0 := time.Now()
	m, err := d.Next.Convert(topic, dl)
	if err != nil {
		util.App.Warn().Err(err).
			Str("converter", d.Name).
			Str("topic", topic).
			Uint64("deliveryTag", dl.DeliveryTag).
			Msg("message conversion failed")
		return m, err
	}
	util.App.Trace().
		Str("converter", d.Name).
		Str("topic", topic).
		Int("bytes", len(m.Value)).
		Dur("took", time.Since(t0)).
		Msg("message converted")
	return m, nil
}
