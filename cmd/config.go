package cmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/wormhole-foundation/wormhole/sdk"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"

	"github.com/wormhole-demo/sei-relayer/internal"
	"github.com/wormhole-demo/sei-relayer/internal/clients"
	"github.com/wormhole-demo/sei-relayer/internal/submitter"
)

const (
	DefaultSpyRPCHost    = "localhost:7073"
	DefaultSeiLCDURL     = "http://localhost:1317"
	DefaultSignerURL     = "http://localhost:8080"
	DefaultFeeAmount     = "3500000"
	DefaultFeeDenom      = "usei"
	DefaultGasLimit      = 1000000
	DefaultSubmitTimeout = 60 * time.Second
	DefaultNetwork       = "mainnet"

	// Wormhole chain ID for Sei
	SeiDestinationChainID = uint16(vaaLib.ChainIDSei)
)

// SeiConfig is everything needed to complete transfers on Sei
type SeiConfig struct {
	SpyRPCHost           string                  // Wormhole spy service endpoint
	SeiLCDURL            string                  // Sei LCD endpoint for smart queries
	SignerURL            string                  // Signing service holding the relayer key
	SenderAddress        string                  // Relayer wallet address on Sei
	TokenBridgeContract  string                  // Wormhole token bridge on Sei
	TranslatorContract   string                  // Token translator on Sei
	Fee                  submitter.FeeSpec       // Fixed completion fee
	FallbackOnQueryError bool                    // Submit when is_vaa_redeemed cannot be queried
	SubmitTimeout        time.Duration           // Timeout of one execute call
	Emitters             []clients.EmitterFilter // Spy emitter filters, empty = all
	Network              string                  // Selects the known token bridge emitters
}

// addSeiFlags registers the flags shared by every command talking to Sei
func addSeiFlags(flags *pflag.FlagSet) {
	flags.String("sei-lcd-url", DefaultSeiLCDURL, "Sei LCD (REST) endpoint used for contract queries")
	flags.String("signer-url", DefaultSignerURL, "Signing service that signs and broadcasts Sei transactions")
	flags.String("sender-address", "", "Relayer wallet address on Sei (required)")
	flags.String("token-bridge-contract", "", "Wormhole token bridge contract on Sei (required)")
	flags.String("translator-contract", "", "Token translator contract on Sei (required)")
	flags.String("fee-amount", DefaultFeeAmount, "Fee amount attached to every completion, in minor units")
	flags.String("fee-denom", DefaultFeeDenom, "Fee denom")
	flags.Uint64("gas-limit", DefaultGasLimit, "Gas limit of completion transactions")
	flags.String("fee-granter", "", "Optional fee granter address (also read from SEI_FEE_GRANTER)")
	flags.Bool("fallback-on-query-error", false, "Submit anyway when the redemption query fails")
	flags.Duration("submit-timeout", DefaultSubmitTimeout, "Timeout for a single completion transaction")
	flags.String("network", DefaultNetwork, "Wormhole network whose token bridge emitters are accepted (mainnet or testnet)")
}

func bindSeiFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for _, name := range []string{
		"sei-lcd-url", "signer-url", "sender-address", "token-bridge-contract", "translator-contract",
		"fee-amount", "fee-denom", "gas-limit", "fee-granter", "fallback-on-query-error", "submit-timeout",
		"network",
	} {
		v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
	v.BindEnv("fee_granter", "SEI_RELAYER_FEE_GRANTER", "SEI_FEE_GRANTER")
}

func loadSeiConfig(v *viper.Viper) (SeiConfig, error) {
	config := SeiConfig{
		SpyRPCHost:          v.GetString("spy_rpc_host"),
		SeiLCDURL:           v.GetString("sei_lcd_url"),
		SignerURL:           v.GetString("signer_url"),
		SenderAddress:       v.GetString("sender_address"),
		TokenBridgeContract: v.GetString("token_bridge_contract"),
		TranslatorContract:  v.GetString("translator_contract"),
		Fee: submitter.FeeSpec{
			Amount:   v.GetString("fee_amount"),
			Denom:    v.GetString("fee_denom"),
			GasLimit: v.GetUint64("gas_limit"),
			Granter:  v.GetString("fee_granter"),
		},
		FallbackOnQueryError: v.GetBool("fallback_on_query_error"),
		SubmitTimeout:        v.GetDuration("submit_timeout"),
		Network:              v.GetString("network"),
	}

	emitters, err := parseEmitterFilters(v.GetStringSlice("emitters"))
	if err != nil {
		return SeiConfig{}, err
	}
	config.Emitters = emitters

	if err := config.Validate(); err != nil {
		return SeiConfig{}, err
	}
	return config, nil
}

// Validate verifies the config is complete enough to submit transactions
func (c *SeiConfig) Validate() error {
	if c.SeiLCDURL == "" {
		return errors.New("Sei LCD URL is required")
	}
	if c.SignerURL == "" {
		return errors.New("signer URL is required")
	}
	if _, err := tokenBridgeEmitters(c.Network); err != nil {
		return err
	}
	submitterConfig := c.SubmitterConfig()
	return submitterConfig.Validate()
}

func (c *SeiConfig) SubmitterConfig() submitter.SeiSubmitterConfig {
	return submitter.SeiSubmitterConfig{
		Contracts: submitter.Contracts{
			TokenBridge: c.TokenBridgeContract,
			Translator:  c.TranslatorContract,
		},
		Sender:               c.SenderAddress,
		Fee:                  c.Fee,
		FallbackOnQueryError: c.FallbackOnQueryError,
		SubmitTimeout:        c.SubmitTimeout,
	}
}

// tokenBridgeEmitters returns the token bridge emitter of every source chain on network
func tokenBridgeEmitters(network string) (map[vaaLib.ChainID][]byte, error) {
	switch strings.ToLower(network) {
	case "", "mainnet":
		return sdk.KnownTokenbridgeEmitters, nil
	case "testnet":
		return sdk.KnownTestnetTokenbridgeEmitters, nil
	default:
		return nil, errors.Newf("unknown network %q, expected mainnet or testnet", network)
	}
}

// processorConfig builds the pipeline config from the relay flags
func (c *SeiConfig) processorConfig(v *viper.Viper) internal.VAAProcessorConfig {
	// Validate already rejected unknown networks
	emitters, _ := tokenBridgeEmitters(c.Network)
	return internal.VAAProcessorConfig{
		DestinationChainID:   SeiDestinationChainID,
		TokenBridgeEmitters:  emitters,
		Emitters:             c.Emitters,
		MaxRetries:           v.GetInt("max_retries"),
		InitialRetryDelay:    v.GetDuration("retry_delay"),
		MaxRetryDelay:        v.GetDuration("max_retry_delay"),
		SubmissionsPerSecond: v.GetFloat64("submissions_per_second"),
	}
}

// parseEmitterFilters parses "chainID:emitterAddress" entries
func parseEmitterFilters(entries []string) ([]clients.EmitterFilter, error) {
	filters := make([]clients.EmitterFilter, 0, len(entries))
	for _, entry := range entries {
		chainStr, addrStr, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			return nil, errors.Newf("invalid emitter %q, expected chainID:address", entry)
		}
		chainID, err := strconv.ParseUint(chainStr, 10, 16)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid chain ID in emitter %q", entry)
		}
		addr, err := internal.NormalizeEmitterAddress(addrStr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, clients.EmitterFilter{ChainID: uint16(chainID), EmitterAddress: addr})
	}
	return filters, nil
}
