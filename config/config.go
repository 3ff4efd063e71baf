package config

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

const (
	// ListenAddrKey is the address the local wallet API listens on.
	ListenAddrKey = "LISTEN_ADDR"
	// ClusterKey is the Solana cluster authorizations are scoped to.
	ClusterKey = "CLUSTER"
	// RPCEndpointKey is the JSON-RPC endpoint of the ledger node.
	RPCEndpointKey = "RPC_ENDPOINT"
	// SignerEndpointKey is the websocket endpoint of the wallet signer host.
	SignerEndpointKey = "SIGNER_ENDPOINT"
	// RedisURLKey enables the Redis credential store and event stream when
	// set; the daemon falls back to in-process equivalents otherwise.
	RedisURLKey = "REDIS_URL"
	// EscrowProgramKey is the base58 id of the deployed escrow program.
	EscrowProgramKey = "ESCROW_PROGRAM"
	// AppNameKey, AppURIKey and AppIconKey form the identity presented to the
	// signer host during authorization.
	AppNameKey = "APP_NAME"
	AppURIKey  = "APP_URI"
	AppIconKey = "APP_ICON"
	// ConfirmTimeoutKey bounds the confirmation wait, in seconds.
	ConfirmTimeoutKey = "CONFIRM_TIMEOUT"
	// LogLevelKey follows logrus levels, 0 (panic) to 6 (trace).
	LogLevelKey = "LOG_LEVEL"
)

var vip *viper.Viper

// InitConfig loads configuration from WALLETD_-prefixed environment
// variables with devnet defaults.
func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("WALLETD")
	vip.AutomaticEnv()

	vip.SetDefault(ListenAddrKey, ":9830")
	vip.SetDefault(ClusterKey, "devnet")
	vip.SetDefault(RPCEndpointKey, "https://api.devnet.solana.com")
	vip.SetDefault(SignerEndpointKey, "ws://127.0.0.1:8188/mwa")
	vip.SetDefault(AppNameKey, "Yukti - Opinion Trading")
	vip.SetDefault(AppURIKey, "https://yukti.app")
	vip.SetDefault(AppIconKey, "favicon.ico")
	vip.SetDefault(ConfirmTimeoutKey, 60)
	vip.SetDefault(LogLevelKey, 4)

	return validate()
}

func validate() error {
	switch cluster := vip.GetString(ClusterKey); cluster {
	case "devnet", "testnet", "mainnet-beta":
	default:
		return fmt.Errorf("unknown cluster %q", cluster)
	}
	if program := vip.GetString(EscrowProgramKey); program != "" {
		if _, err := solana.PublicKeyFromBase58(program); err != nil {
			return fmt.Errorf("invalid escrow program id %q: %w", program, err)
		}
	}
	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

// GetConfirmTimeout returns the confirmation bound as a duration.
func GetConfirmTimeout() time.Duration {
	return time.Duration(vip.GetInt(ConfirmTimeoutKey)) * time.Second
}

// GetEscrowProgram returns the configured escrow program id, or the zero key
// when unset.
func GetEscrowProgram() solana.PublicKey {
	program := vip.GetString(EscrowProgramKey)
	if program == "" {
		return solana.PublicKey{}
	}
	return solana.MustPublicKeyFromBase58(program)
}
