package rabbitmq

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnector_NotOpen(t *testing.T) {
	c := NewConnector(ConnectionFactory{Host: "localhost", Port: DefaultPort})

	_, err := c.Channel()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, c.Close())
}

func TestConnector_OpenFailsWithoutBroker(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	c := NewConnector(ConnectionFactory{
		Host:              "127.0.0.1",
		Port:              port,
		Username:          "guest",
		Password:          "guest",
		VirtualHost:       "/",
		ConnectionTimeout: time.Second,
	})
	err = c.Open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq dial amqp://")
	assert.NotContains(t, err.Error(), "guest:guest")

	_, err = c.Channel()
	assert.ErrorIs(t, err, ErrNotOpen)
}
