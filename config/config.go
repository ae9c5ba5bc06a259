package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "REGISTRY"

type DBConfig struct {
	URL    string
	Scheme string
	User   string
	Passwd string
}

// Enabled reports whether price snapshots should be recorded.
func (c DBConfig) Enabled() bool {
	return c.URL != ""
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Nodes            []string
	DetectNodes      bool
	Workers          int
	Protocols        []string
	PoolAddresses    []string
	CurveMints       []string
	Listen           string
	LogPath          string
	LogLevel         string
	StateInterval    time.Duration
	SnapshotInterval time.Duration
	RefreshOnLoad    bool
	DB               DBConfig
	CpmmFees         []string
	PlatformFees     []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", 8)
	v.SetDefault("protocols", []string{"meteora_amm", "meteora_dammv2", "raydium_ammv4", "raydium_cpmm", "pumpswap"})
	v.SetDefault("listen", ":8080")
	v.SetDefault("log-path", "./logs/")
	v.SetDefault("log-level", "info")
	v.SetDefault("state-interval", 2*time.Second)
	v.SetDefault("snapshot-interval", time.Minute)
	v.SetDefault("db-scheme", "registry")
	v.SetDefault("refresh-on-load", true)
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("registry")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Nodes:            getStringSlice(v, "nodes"),
		DetectNodes:      v.GetBool("detect-nodes"),
		Workers:          v.GetInt("workers"),
		Protocols:        getStringSlice(v, "protocols"),
		PoolAddresses:    getStringSlice(v, "pool-addresses"),
		CurveMints:       getStringSlice(v, "curve-mints"),
		Listen:           v.GetString("listen"),
		LogPath:          v.GetString("log-path"),
		LogLevel:         v.GetString("log-level"),
		StateInterval:    v.GetDuration("state-interval"),
		SnapshotInterval: v.GetDuration("snapshot-interval"),
		RefreshOnLoad:    v.GetBool("refresh-on-load"),
		DB: DBConfig{
			URL:    v.GetString("db-url"),
			Scheme: v.GetString("db-scheme"),
			User:   v.GetString("db-user"),
			Passwd: v.GetString("db-passwd"),
		},
		CpmmFees:     getStringSlice(v, "cpmm-fees"),
		PlatformFees: getStringSlice(v, "platform-fees"),
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Nodes) == 0 {
		return fmt.Errorf("at least one rpc node is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.StateInterval <= 0 {
		return fmt.Errorf("state interval must be positive, got %s", c.StateInterval)
	}
	if c.DB.Enabled() && c.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot interval must be positive, got %s", c.SnapshotInterval)
	}
	if _, err := c.ParsedProtocols(); err != nil {
		return err
	}
	return nil
}

func (c Config) ParsedProtocols() ([]program.Protocol, error) {
	protocols := make([]program.Protocol, 0, len(c.Protocols))
	for _, name := range c.Protocols {
		protocol, err := program.ParseProtocol(name)
		if err != nil {
			return nil, err
		}
		protocols = append(protocols, protocol)
	}
	return protocols, nil
}

func ParseKeys(items []string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, 0, len(items))
	for _, item := range items {
		key, err := solana.PublicKeyFromBase58(item)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", item, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// ParseFees reads address=numerator pairs. Viper lowercases map keys, so base58 addresses cannot be map keys.
func ParseFees(items []string) (map[solana.PublicKey]uint64, error) {
	parsed := make(map[solana.PublicKey]uint64, len(items))
	for _, item := range items {
		address, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid fee entry %q, expected address=numerator", item)
		}
		key, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
		if err != nil {
			return nil, fmt.Errorf("invalid fee config address %q: %w", address, err)
		}
		fee, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid fee for %s: %w", address, err)
		}
		if fee > program.FeeDenominator {
			return nil, fmt.Errorf("fee for %s exceeds %d", address, program.FeeDenominator)
		}
		parsed[key] = fee
	}
	return parsed, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	return cleanStrings(strings.Split(input, ","))
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
