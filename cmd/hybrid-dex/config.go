package main

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "HYBRID_DEX"

// Config is the CLI configuration, merged from flags, HYBRID_DEX_*
// environment variables and an optional YAML file, in that order of
// precedence.
type Config struct {
	LogLevel string `mapstructure:"log-level"`

	Env        string `mapstructure:"env"`
	RPC        string `mapstructure:"rpc"`
	Commitment string `mapstructure:"commitment"`

	// RPCRateLimit is the maximum number of requests per second per RPC
	// method. Zero disables limiting.
	RPCRateLimit float64 `mapstructure:"rpc-rate-limit"`

	Keypair string `mapstructure:"keypair"`

	ProgramID string `mapstructure:"program-id"`
	SeqWidth  int    `mapstructure:"seq-width"`

	ConfirmTimeout time.Duration `mapstructure:"confirm-timeout"`

	// PriorityFee is in micro-lamports per compute unit.
	PriorityFee      uint64 `mapstructure:"priority-fee"`
	ComputeUnitLimit uint32 `mapstructure:"compute-unit-limit"`
	Memo             string `mapstructure:"memo"`

	AppName            string `mapstructure:"app-name"`
	NewRelicLicenseKey string `mapstructure:"new-relic-license-key"`
}

var defaultConfig = Config{
	LogLevel: "warn",

	Env:        "mainnet-beta",
	Commitment: "confirmed",

	Keypair: "./deploy.json",

	SeqWidth: 8,

	ConfirmTimeout: 60 * time.Second,

	AppName: "hybrid-dex-cli",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", defaultConfig.LogLevel)
	v.SetDefault("env", defaultConfig.Env)
	v.SetDefault("rpc", defaultConfig.RPC)
	v.SetDefault("commitment", defaultConfig.Commitment)
	v.SetDefault("rpc-rate-limit", defaultConfig.RPCRateLimit)
	v.SetDefault("keypair", defaultConfig.Keypair)
	v.SetDefault("program-id", defaultConfig.ProgramID)
	v.SetDefault("seq-width", defaultConfig.SeqWidth)
	v.SetDefault("confirm-timeout", defaultConfig.ConfirmTimeout)
	v.SetDefault("priority-fee", defaultConfig.PriorityFee)
	v.SetDefault("compute-unit-limit", defaultConfig.ComputeUnitLimit)
	v.SetDefault("memo", defaultConfig.Memo)
	v.SetDefault("app-name", defaultConfig.AppName)
	v.SetDefault("new-relic-license-key", defaultConfig.NewRelicLicenseKey)

	_ = v.BindEnv("new-relic-license-key", "NEW_RELIC_LICENSE_KEY")

	return v
}

// loadConfig binds flags and reads the config file at path, if any. A path
// that was never set explicitly is allowed to be missing.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet, path string, explicit bool) (*Config, error) {
	if err := v.BindPFlags(flags); err != nil {
		return nil, errors.Wrap(err, "failed to bind flags")
	}

	if len(path) > 0 {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "failed to load config %s", path)
			}
		} else if !os.IsNotExist(err) || explicit {
			return nil, errors.Wrapf(err, "failed to check config %s", path)
		}
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}
