package main

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/tradekit/lumen/internal"
)

var (
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Lumen - crypto market analysis and trading bot",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		return internal.Run(configFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
