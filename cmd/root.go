package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/akashicode/pdf2text/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pdf2text",
	Short: "Convert PDFs to plain text, locally.",
	Long: `pdf2text converts PDF files to plain text on this machine.

It reads the embedded text layer when the PDF has one and falls back to OCR
(tesseract) for scanned pages. Nothing leaves the machine.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.pdf2text/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	appconfig.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "warning: could not determine home directory:", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".pdf2text"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err != nil {
		// config.yaml is optional unless --config names one explicitly
		if cfgFile != "" {
			fmt.Fprintln(os.Stderr, "warning: could not read config:", err)
		}
	}
}
