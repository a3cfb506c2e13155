package rabbitmq

import (
	"net"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionFactory_URI(t *testing.T) {
	c, err := NewConfig(map[string]any{
		HostKey:        "broker",
		UsernameKey:    "connect",
		PasswordKey:    "s3cret",
		VirtualHostKey: "prod",
	})
	require.NoError(t, err)
	f := c.Factory()

	u := f.URI()
	assert.Equal(t, amqp.URI{Scheme: "amqp", Host: "broker", Port: 5672, Username: "connect", Password: "s3cret", Vhost: "prod"}, u)

	parsed, err := amqp.ParseURI(u.String())
	require.NoError(t, err)
	assert.Equal(t, "prod", parsed.Vhost)
	assert.Equal(t, "s3cret", parsed.Password)

	assert.NotContains(t, f.String(), "s3cret")
	assert.Equal(t, "broker:5672", f.Address())
}

func TestConnectionFactory_AMQPConfig(t *testing.T) {
	c, err := NewConfig(map[string]any{
		RequestedChannelMaxKey: 100,
		RequestedFrameMaxKey:   131072,
		RequestedHeartbeatKey:  15,
	})
	require.NoError(t, err)

	cfg := c.Factory().AMQPConfig()
	assert.Equal(t, uint16(100), cfg.ChannelMax)
	assert.Equal(t, 131072, cfg.FrameSize)
	assert.Equal(t, 15*time.Second, cfg.Heartbeat)
	assert.Equal(t, "/", cfg.Vhost)
	assert.Nil(t, cfg.TLSClientConfig)
	require.Len(t, cfg.SASL, 1)
	assert.Equal(t, "PLAIN", cfg.SASL[0].Mechanism())
	assert.Equal(t, "kafka-connect-rabbitmq", cfg.Properties["connection_name"])
	assert.NotNil(t, cfg.Dial)
}

func TestConnectionFactory_AMQPConfigTLSIsCopied(t *testing.T) {
	stores := writeStores(t, t.TempDir())
	sc, err := BuildSecureContext(tlsSettings(stores))
	require.NoError(t, err)

	f := NewConnectionFactory(&Config{Host: "broker", Port: DefaultPort}, sc)
	a := f.AMQPConfig()
	require.NotNil(t, a.TLSClientConfig)
	assert.Equal(t, "broker", a.TLSClientConfig.ServerName)

	a.TLSClientConfig.ServerName = "changed"
	assert.Equal(t, "broker", f.AMQPConfig().TLSClientConfig.ServerName)
	assert.Empty(t, sc.Config().ServerName)
}

func TestConnectionFactory_KeepsConfiguredPort(t *testing.T) {
	sc := &SecureContext{protocol: ProtocolTLSv13}

	f := NewConnectionFactory(&Config{Port: DefaultPort}, sc)
	assert.Equal(t, DefaultPort, f.Port)
	assert.Equal(t, SchemeTLS, f.Scheme())
	assert.Equal(t, 5673, NewConnectionFactory(&Config{Port: 5673}, sc).Port)
	assert.Equal(t, DefaultPort, NewConnectionFactory(&Config{Port: DefaultPort}, nil).Port)
}

func TestConnectionFactory_DialSetsHandshakeDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	f := ConnectionFactory{ConnectionTimeout: time.Second, HandshakeTimeout: 50 * time.Millisecond}
	conn, err := f.dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	server := <-accepted
	defer server.Close()

	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())
}

func TestConnectionFactory_DialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	f := ConnectionFactory{ConnectionTimeout: time.Second}
	_, err = f.dial("tcp", addr)
	assert.Error(t, err)
}
