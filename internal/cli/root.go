package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"letterchat/config"
	"letterchat/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "letterchat",
	Short: "Ask questions about Berkshire Hathaway shareholder letters",
	Long: `letterchat ingests shareholder letters into a local vector index and
answers natural-language questions about them with retrieval-augmented
generation.

Example usage:
  letterchat ingest ./data            # Chunk, embed and index the letters
  letterchat ask -q "What does Buffett think about index funds?"
  letterchat serve                    # Expose POST /api/chat`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.SetLevel(cfg.Logging.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./letterchat.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
