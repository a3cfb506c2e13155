package core

import (
	amqp "github.com/rabbitmq/amqp091-go"
	kafka "github.com/segmentio/kafka-go"
)

// Converter turns one broker delivery into the Kafka record written to
// topic.
type Converter interface {
	Convert(topic string, d amqp.Delivery) (kafka.Message, error)
}

type ConverterFunc func(topic string, d amqp.Delivery) (kafka.Message, error)

func (f ConverterFunc) Convert(topic string, d amqp.Delivery) (kafka.Message, error) {
	return f(topic, d)
}
