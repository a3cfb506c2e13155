package rabbitmq

import (
	"fmt"

	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/config"
	"github.com/cobolbaby/kafka-connect-rabbitmq/internal/util"
)

// Keys shared by the sink and source connectors.
const (
	HostKey                    = "rabbitmq.host"
	PortKey                    = "rabbitmq.port"
	UsernameKey                = "rabbitmq.username"
	PasswordKey                = "rabbitmq.password"
	VirtualHostKey             = "rabbitmq.virtual.host"
	RequestedChannelMaxKey     = "rabbitmq.requested.channel.max"
	RequestedFrameMaxKey       = "rabbitmq.requested.frame.max"
	ConnectionTimeoutKey       = "rabbitmq.connection.timeout.ms"
	HandshakeTimeoutKey        = "rabbitmq.handshake.timeout.ms"
	ShutdownTimeoutKey         = "rabbitmq.shutdown.timeout.ms"
	RequestedHeartbeatKey      = "rabbitmq.requested.heartbeat.seconds"
	AutomaticRecoveryKey       = "rabbitmq.automatic.recovery.enabled"
	TopologyRecoveryKey        = "rabbitmq.topology.recovery.enabled"
	NetworkRecoveryIntervalKey = "rabbitmq.network.recovery.interval.ms"
	UseSSLKey                  = "rabbitmq.ssl"
	KeystoreLocationKey        = "rabbitmq.ssl.keystore.location"
	KeystorePasswordKey        = "rabbitmq.ssl.keystore.password"
	KeystorePassphraseKey      = "rabbitmq.ssl.keystore.passphrase"
	KeystoreTypeKey            = "rabbitmq.ssl.keystore.type"
	TruststoreLocationKey      = "rabbitmq.ssl.truststore.location"
	TruststorePasswordKey      = "rabbitmq.ssl.truststore.password"
	TruststoreTypeKey          = "rabbitmq.ssl.truststore.type"
	ProtocolKey                = "rabbitmq.ssl.protocol"
)

var schema = config.NewSchema().MustDefine(
	config.Setting{Name: HostKey, Type: config.String, Default: DefaultHost, Validator: config.Tag("required"), Importance: config.High,
		Doc: "The RabbitMQ host to connect to."},
	config.Setting{Name: UsernameKey, Type: config.String, Default: DefaultUsername, Importance: config.High,
		Doc: "The username to authenticate to RabbitMQ with."},
	config.Setting{Name: PasswordKey, Type: config.Password, Default: DefaultPassword, Importance: config.High,
		Doc: "The password to authenticate to RabbitMQ with."},
	config.Setting{Name: VirtualHostKey, Type: config.String, Default: DefaultVirtualHost, Importance: config.High,
		Doc: "The virtual host to use when connecting to the broker."},
	config.Setting{Name: RequestedChannelMaxKey, Type: config.Int, Default: DefaultChannelMax, Validator: config.Tag("gte=0,lte=65535"), Importance: config.Low,
		Doc: "Initially requested maximum channel number. Zero for unlimited."},
	config.Setting{Name: RequestedFrameMaxKey, Type: config.Int, Default: DefaultFrameMax, Validator: config.Tag("gte=0"), Importance: config.Low,
		Doc: "Initially requested maximum frame size, in octets. Zero for unlimited."},
	config.Setting{Name: ConnectionTimeoutKey, Type: config.Int, Default: DefaultConnectionTimeoutMs, Validator: config.Tag("gte=0"), Importance: config.Low,
		Doc: "Connection TCP establishment timeout in milliseconds. Zero for infinite."},
	config.Setting{Name: HandshakeTimeoutKey, Type: config.Int, Default: DefaultHandshakeTimeoutMs, Validator: config.Tag("gte=0"), Importance: config.Low,
		Doc: "The AMQP 0-9-1 protocol handshake timeout, in milliseconds."},
	config.Setting{Name: ShutdownTimeoutKey, Type: config.Int, Default: DefaultShutdownTimeoutMs, Validator: config.Tag("gte=0"), Importance: config.Low,
		Doc: "Time consumers have to finish in-flight deliveries after the connection has closed, in milliseconds."},
	config.Setting{Name: RequestedHeartbeatKey, Type: config.Int, Default: DefaultHeartbeatSeconds, Validator: config.Tag("gte=0,lte=65535"), Importance: config.Low,
		Doc: "Requested heartbeat timeout in seconds. Heartbeat frames are sent at about half this interval."},
	config.Setting{Name: AutomaticRecoveryKey, Type: config.Bool, Default: DefaultAutomaticRecovery, Importance: config.Low,
		Doc: "Enables or disables automatic connection recovery."},
	config.Setting{Name: TopologyRecoveryKey, Type: config.Bool, Default: DefaultTopologyRecovery, Importance: config.Low,
		Doc: "Enables or disables topology recovery."},
	config.Setting{Name: NetworkRecoveryIntervalKey, Type: config.Long, Default: DefaultNetworkRecoveryInterval, Validator: config.Tag("gte=0"), Importance: config.Low,
		Doc: "Interval between connection recovery attempts, in milliseconds."},
	config.Setting{Name: PortKey, Type: config.Int, Default: DefaultPort, Validator: config.Tag("gte=1,lte=65535"), Importance: config.Medium,
		Doc: "The RabbitMQ port to connect to. Left unset with TLS enabled, 5671 is used."},
	config.Setting{Name: UseSSLKey, Type: config.Bool, Default: false, Importance: config.High,
		Doc: "Enable SSL/TLS."},
	config.Setting{Name: KeystoreLocationKey, Type: config.String, Default: "", Importance: config.Low,
		Doc: "Keystore location."},
	config.Setting{Name: KeystorePasswordKey, Type: config.Password, Default: "", Importance: config.Low,
		Doc: "Keystore password."},
	config.Setting{Name: KeystorePassphraseKey, Type: config.Password, Default: "", Importance: config.Low,
		Doc: "Passphrase of the private key entries in the keystore."},
	config.Setting{Name: KeystoreTypeKey, Type: config.String, Default: DefaultStoreType, Importance: config.Low,
		Doc: "Keystore type (only JKS supported)."},
	config.Setting{Name: TruststoreLocationKey, Type: config.String, Default: "", Importance: config.Low,
		Doc: "Truststore location."},
	config.Setting{Name: TruststorePasswordKey, Type: config.Password, Default: "", Importance: config.Low,
		Doc: "Truststore password."},
	config.Setting{Name: TruststoreTypeKey, Type: config.String, Default: DefaultStoreType, Importance: config.Low,
		Doc: "Truststore type (only JKS supported)."},
	config.Setting{Name: ProtocolKey, Type: config.String, Default: DefaultTLSProtocol, Importance: config.Low,
		Doc: "SSL/TLS protocol to use: TLS, TLSv1.2 or TLSv1.3."},
)

// Schema returns a copy of the settings shared by every connector variant.
// Variants extend the copy with their own keys.
func Schema() *config.Schema { return schema.Clone() }

// Config is the connection part of a connector configuration. Durations
// keep the units of their keys; ConnectionFactory converts them.
type Config struct {
	Host                    string      `yaml:"host"`
	Port                    int         `yaml:"port"`
	Username                string      `yaml:"username"`
	Password                string      `yaml:"-"`
	VirtualHost             string      `yaml:"virtualHost"`
	RequestedChannelMax     int         `yaml:"requestedChannelMax"`
	RequestedFrameMax       int         `yaml:"requestedFrameMax"`
	ConnectionTimeoutMs     int         `yaml:"connectionTimeoutMs"`
	HandshakeTimeoutMs      int         `yaml:"handshakeTimeoutMs"`
	ShutdownTimeoutMs       int         `yaml:"shutdownTimeoutMs"`
	RequestedHeartbeatSec   int         `yaml:"requestedHeartbeatSeconds"`
	AutomaticRecovery       bool        `yaml:"automaticRecovery"`
	TopologyRecovery        bool        `yaml:"topologyRecovery"`
	NetworkRecoveryInterval int64       `yaml:"networkRecoveryIntervalMs"`
	UseSSL                  bool        `yaml:"ssl"`
	TLS                     TLSSettings `yaml:"tls"`

	factory ConnectionFactory
}

// TLSSettings holds the keystore and truststore material read when UseSSL
// is set.
type TLSSettings struct {
	KeystoreLocation   string `yaml:"keystoreLocation"`
	KeystorePassword   string `yaml:"-"`
	KeystorePassphrase string `yaml:"-"`
	KeystoreType       string `yaml:"keystoreType"`
	TruststoreLocation string `yaml:"truststoreLocation"`
	TruststorePassword string `yaml:"-"`
	TruststoreType     string `yaml:"truststoreType"`
	Protocol           string `yaml:"protocol"`
}

// NewConfig binds raw against Schema and builds the connection factory.
// Nothing is returned unless every key and the TLS material are valid.
func NewConfig(raw map[string]any) (*Config, error) {
	v, err := schema.Bind(raw)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq config: %w", err)
	}
	return FromValues(v)
}

// FromValues builds a Config from values bound by Schema or by a variant
// schema derived from it.
func FromValues(v config.Values) (*Config, error) {
	util.App.Debug().Object("values", v).Msg("rabbitmq connector config values")
	if unused := v.Unused(); len(unused) > 0 {
		util.App.Warn().Strs("keys", unused).Msg("supplied configurations are not known and will be ignored")
	}

	c := &Config{
		Host:                    v.String(HostKey),
		Port:                    v.Int(PortKey),
		Username:                v.String(UsernameKey),
		Password:                v.Password(PasswordKey),
		VirtualHost:             v.String(VirtualHostKey),
		RequestedChannelMax:     v.Int(RequestedChannelMaxKey),
		RequestedFrameMax:       v.Int(RequestedFrameMaxKey),
		ConnectionTimeoutMs:     v.Int(ConnectionTimeoutKey),
		HandshakeTimeoutMs:      v.Int(HandshakeTimeoutKey),
		ShutdownTimeoutMs:       v.Int(ShutdownTimeoutKey),
		RequestedHeartbeatSec:   v.Int(RequestedHeartbeatKey),
		AutomaticRecovery:       v.Bool(AutomaticRecoveryKey),
		TopologyRecovery:        v.Bool(TopologyRecoveryKey),
		NetworkRecoveryInterval: v.Long(NetworkRecoveryIntervalKey),
		UseSSL:                  v.Bool(UseSSLKey),
		TLS: TLSSettings{
			KeystoreLocation:   v.String(KeystoreLocationKey),
			KeystorePassword:   v.Password(KeystorePasswordKey),
			KeystorePassphrase: v.Password(KeystorePassphraseKey),
			KeystoreType:       v.String(KeystoreTypeKey),
			TruststoreLocation: v.String(TruststoreLocationKey),
			TruststorePassword: v.Password(TruststorePasswordKey),
			TruststoreType:     v.String(TruststoreTypeKey),
			Protocol:           v.String(ProtocolKey),
		},
	}

	var secure *SecureContext
	if c.UseSSL {
		s, err := BuildSecureContext(c.TLS)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq config: %w", err)
		}
		secure = s
		if !v.Supplied(PortKey) {
			c.Port = DefaultTLSPort
		}
	}
	c.factory = NewConnectionFactory(c, secure)
	return c, nil
}

// Factory returns the connection descriptor derived at construction.
func (c *Config) Factory() ConnectionFactory { return c.factory }
