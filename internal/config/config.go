// internal/config/config.go
package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"
)

type Config struct {
	Network      string   `mapstructure:"network"`
	RPCList      []string `mapstructure:"rpc_list"`
	WebSocketURL string   `mapstructure:"websocket_url"`
	ProgramID    string   `mapstructure:"program_id"`
	PrivateKey   string   `mapstructure:"private_key"`
	AssetList    string   `mapstructure:"asset_list"`
	SlippageBps  uint64   `mapstructure:"slippage_bps"`
	Commitment   string   `mapstructure:"commitment"`
	Retries      int      `mapstructure:"retries"`
	DebugLogging bool     `mapstructure:"debug_logging"`
	LogFile      string   `mapstructure:"log_file"`
}

const (
	DefaultNetwork     = "mainnet-beta"
	DefaultSlippageBps = 100
	DefaultCommitment  = "confirmed"
	DefaultRetries     = 3
	DefaultLogFile     = "hydra.log"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"network":      DefaultNetwork,
		"slippage_bps": DefaultSlippageBps,
		"commitment":   DefaultCommitment,
		"retries":      DefaultRetries,
		"log_file":     DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURL(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if cfg.WebSocketURL != "" {
		if err := validateURL(cfg.WebSocketURL, "ws"); err != nil {
			return errors.New("invalid WebSocket URL protocol")
		}
	}
	if cfg.ProgramID == "" {
		return errors.New("missing program_id in configuration")
	}
	if _, err := solana.PublicKeyFromBase58(cfg.ProgramID); err != nil {
		return errors.New("invalid program_id")
	}
	if cfg.SlippageBps > 10000 {
		return errors.New("slippage_bps must be between 0 and 10000")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return errors.New("invalid commitment level")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("HYDRA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envKey := v.GetString("PRIVATE_KEY")
	if envKey != "" {
		cfg.PrivateKey = envKey
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, raw := range rpcs {
			clean := strings.TrimSpace(raw)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}

// CommitmentType maps the configured commitment level onto the RPC type.
func (c *Config) CommitmentType() rpc.CommitmentType {
	switch c.Commitment {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

// Program returns the configured on-chain program address.
func (c *Config) Program() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.ProgramID)
}
