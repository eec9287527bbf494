package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wormhole-demo/sei-relayer/internal"
	"github.com/wormhole-demo/sei-relayer/internal/clients"
	"github.com/wormhole-demo/sei-relayer/internal/metrics"
	"github.com/wormhole-demo/sei-relayer/internal/submitter"
)

// seiCmd represents the command to relay VAAs to Sei
var seiCmd = &cobra.Command{
	Use:   "sei",
	Short: "Relay Wormhole token bridge transfers to Sei",
	Long: `Listens for signed VAAs on the Wormhole spy and completes every token bridge
transfer addressed to Sei.

Plain transfers are submitted to the token bridge with submit_vaa; transfers with
payload go through the token translator with complete_transfer_and_convert.
VAAs already redeemed, by this relayer or any other, are skipped.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		printBanner()
	},
	RunE: runSeiRelay,
}

func init() {
	rootCmd.AddCommand(seiCmd)

	seiCmd.Flags().StringSlice(
		"emitters",
		nil,
		"Token bridge emitters to subscribe to, as chainID:address (default: all VAAs)")

	seiCmd.Flags().Int(
		"max-retries",
		5,
		"Retries of a failed completion before giving up on a VAA")

	seiCmd.Flags().Duration(
		"retry-delay",
		3*time.Second,
		"Delay before the first retry, grows by half on each attempt")

	seiCmd.Flags().Duration(
		"max-retry-delay",
		time.Minute,
		"Upper bound of the retry delay")

	seiCmd.Flags().Int(
		"max-concurrent",
		4,
		"VAAs processed concurrently")

	seiCmd.Flags().Float64(
		"submissions-per-second",
		0,
		"Rate limit of completion attempts (0 = unlimited)")

	seiCmd.Flags().String(
		"metrics-addr",
		"",
		"Address to serve Prometheus metrics on, e.g. :9090 (disabled when empty)")

	viper.BindPFlag("emitters", seiCmd.Flags().Lookup("emitters"))
	viper.BindPFlag("max_retries", seiCmd.Flags().Lookup("max-retries"))
	viper.BindPFlag("retry_delay", seiCmd.Flags().Lookup("retry-delay"))
	viper.BindPFlag("max_retry_delay", seiCmd.Flags().Lookup("max-retry-delay"))
	viper.BindPFlag("max_concurrent", seiCmd.Flags().Lookup("max-concurrent"))
	viper.BindPFlag("submissions_per_second", seiCmd.Flags().Lookup("submissions-per-second"))
	viper.BindPFlag("metrics_addr", seiCmd.Flags().Lookup("metrics-addr"))
}

// newSeiSubmitter wires the Sei query client and the signing service into the completion step
func newSeiSubmitter(ctx context.Context, logger *zap.Logger, config SeiConfig) (*submitter.SeiSubmitter, error) {
	seiClient := clients.NewSeiClient(logger, config.SeiLCDURL)
	signer := clients.NewSigningServiceClient(logger, config.SignerURL)

	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := signer.CheckHealth(healthCtx); err != nil {
		return nil, errors.Wrap(err, "signing service not available")
	}
	logger.Info("Connected to signing service", zap.String("url", config.SignerURL))

	return submitter.NewSeiSubmitter(logger, config.SubmitterConfig(), seiClient, signer)
}

func runSeiRelay(cmd *cobra.Command, args []string) error {
	logger := configureLogging(cmd, args)
	logger.Info("Starting Sei relayer")

	config, err := loadSeiConfig(viper.GetViper())
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logger.Info("Configuration",
		zap.String("spyRPC", config.SpyRPCHost),
		zap.String("seiLCD", config.SeiLCDURL),
		zap.String("signer", config.SignerURL),
		zap.String("sender", config.SenderAddress),
		zap.String("tokenBridge", config.TokenBridgeContract),
		zap.String("translator", config.TranslatorContract),
		zap.Stringer("fee", config.Fee),
		zap.Bool("fallbackOnQueryError", config.FallbackOnQueryError),
		zap.String("network", config.Network),
		zap.Int("emitterFilters", len(config.Emitters)))

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Info("Received shutdown signal")
		cancel()
	}()

	seiSubmitter, err := newSeiSubmitter(ctx, logger, config)
	if err != nil {
		return err
	}

	m := metrics.New()
	var background conc.WaitGroup
	defer func() {
		cancel()
		background.Wait()
	}()
	if addr := viper.GetString("metrics_addr"); addr != "" {
		background.Go(func() {
			if err := m.Serve(ctx, logger, addr); err != nil {
				logger.Error("Metrics server stopped", zap.Error(err))
			}
		})
	}

	spyClient, err := clients.NewSpyClient(logger, config.SpyRPCHost, config.Emitters)
	if err != nil {
		return errors.Wrap(err, "failed to create spy client")
	}

	vaaProcessor := internal.NewDefaultVAAProcessor(logger, config.processorConfig(viper.GetViper()), seiSubmitter, m)

	relayer, err := internal.NewRelayer(logger, spyClient, vaaProcessor, viper.GetInt("max_concurrent"))
	if err != nil {
		return errors.Wrap(err, "failed to initialize relayer")
	}
	defer relayer.Close()

	if err := relayer.Start(ctx); err != nil {
		return errors.Wrap(err, "relayer stopped with error")
	}

	return nil
}
