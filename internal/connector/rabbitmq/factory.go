package rabbitmq

import (
	"net"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	SchemePlain = "amqp"
	SchemeTLS   = "amqps"
)

// RecoveryPolicy is read by the runtime that owns the connection; the AMQP
// client itself does not reconnect.
type RecoveryPolicy struct {
	AutomaticRecovery       bool
	TopologyRecovery        bool
	NetworkRecoveryInterval time.Duration
}

// ConnectionFactory describes how to reach the broker. It is a value:
// copies are independent and the secure context is shared read-only.
type ConnectionFactory struct {
	Host                string
	Port                int
	Username            string
	Password            string
	VirtualHost         string
	RequestedChannelMax int
	RequestedFrameMax   int
	ConnectionTimeout   time.Duration
	HandshakeTimeout    time.Duration
	ShutdownTimeout     time.Duration
	RequestedHeartbeat  time.Duration
	Recovery            RecoveryPolicy

	secure *SecureContext
}

// NewConnectionFactory maps c field for field. With a secure context the
// factory speaks amqps on c.Port as given.
func NewConnectionFactory(c *Config, secure *SecureContext) ConnectionFactory {
	f := ConnectionFactory{
		Host:                c.Host,
		Port:                c.Port,
		Username:            c.Username,
		Password:            c.Password,
		VirtualHost:         c.VirtualHost,
		RequestedChannelMax: c.RequestedChannelMax,
		RequestedFrameMax:   c.RequestedFrameMax,
		ConnectionTimeout:   time.Duration(c.ConnectionTimeoutMs) * time.Millisecond,
		HandshakeTimeout:    time.Duration(c.HandshakeTimeoutMs) * time.Millisecond,
		ShutdownTimeout:     time.Duration(c.ShutdownTimeoutMs) * time.Millisecond,
		RequestedHeartbeat:  time.Duration(c.RequestedHeartbeatSec) * time.Second,
		Recovery: RecoveryPolicy{
			AutomaticRecovery:       c.AutomaticRecovery,
			TopologyRecovery:        c.TopologyRecovery,
			NetworkRecoveryInterval: time.Duration(c.NetworkRecoveryInterval) * time.Millisecond,
		},
	}
	f.secure = secure
	return f
}

// SecureContext is nil for plain transport.
func (f ConnectionFactory) SecureContext() *SecureContext { return f.secure }

func (f ConnectionFactory) UsesTLS() bool { return f.secure != nil }

func (f ConnectionFactory) Scheme() string {
	if f.UsesTLS() {
		return SchemeTLS
	}
	return SchemePlain
}

func (f ConnectionFactory) Address() string {
	return net.JoinHostPort(f.Host, strconv.Itoa(f.Port))
}

func (f ConnectionFactory) URI() amqp.URI {
	return amqp.URI{
		Scheme:   f.Scheme(),
		Host:     f.Host,
		Port:     f.Port,
		Username: f.Username,
		Password: f.Password,
		Vhost:    f.VirtualHost,
	}
}

// String is the broker URI with the password masked, suitable for logs.
func (f ConnectionFactory) String() string {
	u := f.URI()
	if u.Password != "" {
		u.Password = "xxxxx"
	}
	return u.String()
}

// AMQPConfig is the client configuration Dial uses. Each call returns a
// fresh TLS config.
func (f ConnectionFactory) AMQPConfig() amqp.Config {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName("kafka-connect-rabbitmq")

	cfg := amqp.Config{
		SASL:       []amqp.Authentication{&amqp.PlainAuth{Username: f.Username, Password: f.Password}},
		Vhost:      f.VirtualHost,
		ChannelMax: uint16(f.RequestedChannelMax), // #nosec G115 - schema bounds it to 65535
		FrameSize:  f.RequestedFrameMax,
		Heartbeat:  f.RequestedHeartbeat,
		Properties: props,
		Locale:     "en_US",
		Dial:       f.dial,
	}
	if f.secure != nil {
		cfg.TLSClientConfig = f.secure.Config()
		if cfg.TLSClientConfig.ServerName == "" {
			cfg.TLSClientConfig.ServerName = f.Host
		}
	}
	return cfg
}

// Dial opens one connection. Reconnecting according to Recovery is up to
// the caller.
func (f ConnectionFactory) Dial() (*amqp.Connection, error) {
	return amqp.DialConfig(f.URI().String(), f.AMQPConfig())
}

// dial bounds TCP establishment by ConnectionTimeout and the AMQP
// handshake by HandshakeTimeout; the client clears the deadline once the
// connection is open.
func (f ConnectionFactory) dial(network, addr string) (net.Conn, error) {
	conn, err := net.DialTimeout(network, addr, f.ConnectionTimeout)
	if err != nil {
		return nil, err
	}
	if f.HandshakeTimeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(f.HandshakeTimeout)); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}
