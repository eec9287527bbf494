package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/wormhole-foundation/wormhole/sdk"
	vaaLib "github.com/wormhole-foundation/wormhole/sdk/vaa"
)

func newTestViper(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addSeiFlags(flags)
	require.NoError(t, flags.Parse(args))

	v := viper.New()
	bindSeiFlags(v, flags)
	return v
}

func TestLoadSeiConfigDefaults(t *testing.T) {
	v := newTestViper(t,
		"--sender-address", "sei1relayer",
		"--token-bridge-contract", "sei1bridge",
		"--translator-contract", "sei1translator",
	)
	v.Set("spy_rpc_host", DefaultSpyRPCHost)

	config, err := loadSeiConfig(v)
	require.NoError(t, err)

	require.Equal(t, DefaultSeiLCDURL, config.SeiLCDURL)
	require.Equal(t, DefaultSignerURL, config.SignerURL)
	require.Equal(t, "3500000", config.Fee.Amount)
	require.Equal(t, "usei", config.Fee.Denom)
	require.EqualValues(t, 1000000, config.Fee.GasLimit)
	require.False(t, config.FallbackOnQueryError)
	require.Equal(t, DefaultSubmitTimeout, config.SubmitTimeout)
	require.Empty(t, config.Emitters)

	sc := config.SubmitterConfig()
	require.Equal(t, "sei1bridge", sc.Contracts.TokenBridge)
	require.Equal(t, "sei1translator", sc.Contracts.Translator)
	require.Equal(t, "sei1relayer", sc.Sender)
}

func TestLoadSeiConfigFeeGranterFromEnv(t *testing.T) {
	t.Setenv("SEI_FEE_GRANTER", "sei1granter")

	v := newTestViper(t,
		"--sender-address", "sei1relayer",
		"--token-bridge-contract", "sei1bridge",
		"--translator-contract", "sei1translator",
	)

	config, err := loadSeiConfig(v)
	require.NoError(t, err)
	require.Equal(t, "sei1granter", config.Fee.Granter)
}

func TestLoadSeiConfigMissingContracts(t *testing.T) {
	v := newTestViper(t, "--sender-address", "sei1relayer")

	_, err := loadSeiConfig(v)
	require.ErrorContains(t, err, "token bridge contract address is not set")
}

func TestLoadSeiConfigInvalidFee(t *testing.T) {
	v := newTestViper(t,
		"--sender-address", "sei1relayer",
		"--token-bridge-contract", "sei1bridge",
		"--translator-contract", "sei1translator",
		"--gas-limit", "0",
	)

	_, err := loadSeiConfig(v)
	require.ErrorContains(t, err, "gas limit must be greater than zero")
}

func TestParseEmitterFilters(t *testing.T) {
	filters, err := parseEmitterFilters([]string{
		"2:0x3ee18B2214AFF97000D974cf647E7C347E8fa585",
		" 1:ec7372995d5cc8732397fb0ad35c0121e0eaa90d26f828a534cab54391b3a4f5 ",
	})
	require.NoError(t, err)
	require.Len(t, filters, 2)

	require.EqualValues(t, 2, filters[0].ChainID)
	require.Equal(t, "0000000000000000000000003ee18b2214aff97000d974cf647e7c347e8fa585", filters[0].EmitterAddress)
	require.EqualValues(t, 1, filters[1].ChainID)
	require.Equal(t, "ec7372995d5cc8732397fb0ad35c0121e0eaa90d26f828a534cab54391b3a4f5", filters[1].EmitterAddress)
}

func TestParseEmitterFiltersErrors(t *testing.T) {
	_, err := parseEmitterFilters([]string{"nocolon"})
	require.ErrorContains(t, err, "expected chainID:address")

	_, err = parseEmitterFilters([]string{"70000:0x01"})
	require.ErrorContains(t, err, "invalid chain ID")

	_, err = parseEmitterFilters([]string{"2:0xzz"})
	require.ErrorContains(t, err, "invalid emitter address")
}

func TestLoadSeiConfigNetwork(t *testing.T) {
	args := []string{
		"--sender-address", "sei1relayer",
		"--token-bridge-contract", "sei1bridge",
		"--translator-contract", "sei1translator",
	}

	config, err := loadSeiConfig(newTestViper(t, args...))
	require.NoError(t, err)
	require.Equal(t, DefaultNetwork, config.Network)

	_, err = loadSeiConfig(newTestViper(t, append(args, "--network", "localnet")...))
	require.ErrorContains(t, err, "unknown network")

	emitters, err := tokenBridgeEmitters("TESTNET")
	require.NoError(t, err)
	require.Equal(t, sdk.KnownTestnetTokenbridgeEmitters, emitters)
}

func TestProcessorConfig(t *testing.T) {
	v := newTestViper(t,
		"--sender-address", "sei1relayer",
		"--token-bridge-contract", "sei1bridge",
		"--translator-contract", "sei1translator",
	)
	v.Set("emitters", []string{"2:0x0290FB167208Af455bB137780163b7B7a9a10C16"})
	v.Set("max_retries", 7)

	config, err := loadSeiConfig(v)
	require.NoError(t, err)

	pc := config.processorConfig(v)
	require.Equal(t, SeiDestinationChainID, pc.DestinationChainID)
	require.Equal(t, 7, pc.MaxRetries)
	require.Equal(t, sdk.KnownTokenbridgeEmitters, pc.TokenBridgeEmitters)
	require.Contains(t, pc.TokenBridgeEmitters, vaaLib.ChainIDEthereum)
	require.Len(t, pc.Emitters, 1)
	require.Equal(t, "0000000000000000000000000290fb167208af455bb137780163b7b7a9a10c16", pc.Emitters[0].EmitterAddress)
}
