package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	authCmd "suitec/internal/cli/auth"
	configCmd "suitec/internal/cli/config"
	digestCmd "suitec/internal/cli/digest"
)

var rootCmd = &cobra.Command{
	Use:   "suitec",
	Short: "SuiteC command line client",
	Long:  "Command line client for the SuiteC collaborative learning server",
}

func initConfig() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.SetConfigFile(filepath.Join(home, ".suitec", "config.yaml"))
	viper.ReadInConfig()
}

func main() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(authCmd.AuthCmd)
	rootCmd.AddCommand(configCmd.ConfigCmd)
	rootCmd.AddCommand(digestCmd.DigestCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
