package cmd

import (
	"fmt"
	"os"
	"strings"

	dotenv "github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sei-relayer",
	Short: "Completes Wormhole token bridge transfers on Sei",
}

func init() {
	// Tentatively load .env file
	_ = dotenv.Load()

	rootCmd.PersistentFlags().Bool(
		"debug",
		false,
		"Enables debug output.")

	rootCmd.PersistentFlags().Bool(
		"json",
		false,
		"Enables structured logging in JSON format.")

	rootCmd.PersistentFlags().String(
		"config",
		"",
		"Optional config file (yaml, json or toml); flags and env override it")

	rootCmd.PersistentFlags().String(
		"spy-rpc-host",
		DefaultSpyRPCHost,
		"Wormhole spy service endpoint")

	addSeiFlags(rootCmd.PersistentFlags())

	// Bind flags to viper for env variable support
	viper.BindPFlag("spy_rpc_host", rootCmd.PersistentFlags().Lookup("spy-rpc-host"))
	bindSeiFlags(viper.GetViper(), rootCmd.PersistentFlags())

	cobra.OnInitialize(initConfig)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("sei_relayer")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	configFile, _ := rootCmd.PersistentFlags().GetString("config")
	if configFile == "" {
		return
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read config file %s: %v\n", configFile, err)
		os.Exit(1)
	}
}

func printBanner() {
	colours := []string{
		"\033[38;5;160m",
		"\033[38;5;161m",
		"\033[38;5;162m",
		"\033[38;5;163m",
		"\033[38;5;164m",
	}
	banner := `
  ____       _   ____      _
 / ___|  ___(_) |  _ \ ___| | __ _ _   _  ___ _ __
 \___ \ / _ \ | | |_) / _ \ |/ _' | | | |/ _ \ '__|
  ___) |  __/ | |  _ <  __/ | (_| | |_| |  __/ |
 |____/ \___|_| |_| \_\___|_|\__,_|\__, |\___|_|
                                   |___/
`
	lines := strings.Split(strings.Trim(banner, "\n"), "\n")

	for i, line := range lines {
		fmt.Printf("%s%s\n", colours[i%len(colours)], line)
	}

	fmt.Println("\033[0m") // Reset
}

func configureLogging(cmd *cobra.Command, _ []string) *zap.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	json, _ := cmd.Flags().GetBool("json")

	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.Development = true
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if json {
		config.Encoding = "json"
		config.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	} else {
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		// Fallback to a basic logger if config fails
		logger, _ = zap.NewProduction()
	}

	zap.ReplaceGlobals(logger)

	return logger
}
