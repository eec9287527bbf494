package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wormhole-demo/sei-relayer/internal"
)

// redeemCmd completes a single VAA, useful to unstick a transfer by hand
var redeemCmd = &cobra.Command{
	Use:   "redeem",
	Short: "Complete a single signed VAA on Sei",
	Long: `Completes one signed VAA on Sei and prints the outcome.

The VAA is given as hex (with or without 0x) or base64. Redeeming a VAA
that is already redeemed is not an error and reports already_redeemed.`,
	RunE: runRedeem,
}

func init() {
	rootCmd.AddCommand(redeemCmd)

	redeemCmd.Flags().String("vaa", "", "Signed VAA to complete, hex or base64 (required)")
	redeemCmd.MarkFlagRequired("vaa")
}

func runRedeem(cmd *cobra.Command, args []string) error {
	logger := configureLogging(cmd, args)

	raw, _ := cmd.Flags().GetString("vaa")
	vaaBytes, err := internal.DecodeVAAString(raw)
	if err != nil {
		return err
	}
	vaaData, err := internal.ParseVAA(vaaBytes)
	if err != nil {
		return err
	}

	config, err := loadSeiConfig(viper.GetViper())
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	seiSubmitter, err := newSeiSubmitter(ctx, logger, config)
	if err != nil {
		return err
	}

	// One attempt only; a retry is a rerun of the command
	processorConfig := config.processorConfig(viper.GetViper())
	processorConfig.MaxRetries = 0
	processor := internal.NewDefaultVAAProcessor(logger, processorConfig, seiSubmitter, nil)

	outcome, err := processor.ProcessVAA(ctx, *vaaData)
	if err != nil {
		return err
	}
	if outcome == nil {
		return errors.Newf("VAA %s is not a token bridge transfer to Sei (network %s)", vaaData.MessageID(), config.Network)
	}

	fmt.Fprintln(cmd.OutOrStdout(), outcome.String())
	logger.Debug("Redeem finished", zap.String("messageID", vaaData.MessageID()), zap.Stringer("outcome", outcome))
	return nil
}
