package rabbitmq

// Broker client defaults. The schema is the only place they are applied.
const (
	DefaultHost        = "localhost"
	DefaultUsername    = "guest"
	DefaultPassword    = "guest"
	DefaultVirtualHost = "/"

	DefaultPort    = 5672
	DefaultTLSPort = 5671

	// 0 means unlimited for both.
	DefaultChannelMax = 2047
	DefaultFrameMax   = 0

	DefaultConnectionTimeoutMs = 60000
	DefaultHandshakeTimeoutMs  = 10000
	DefaultShutdownTimeoutMs   = 10000
	DefaultHeartbeatSeconds    = 60

	DefaultAutomaticRecovery       = true
	DefaultTopologyRecovery        = true
	DefaultNetworkRecoveryInterval = int64(10000)

	DefaultStoreType   = StoreTypeJKS
	DefaultTLSProtocol = ProtocolTLSv13
)
