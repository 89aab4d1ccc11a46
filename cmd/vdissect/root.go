package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"github.com/vuuvv/vdissect"
	"os"
)

var (
	configFile string
	scriptsDir string
)

var rootCmd = &cobra.Command{
	Use:   "vdissect",
	Short: "Dissect a single captured packet with a per-opcode script",
	Long: `vdissect reads one captured packet, parses its header (size, opcode),
looks up the dissection script for the packet's direction and opcode, and
prints a structural report of every field the script reads.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&scriptsDir, "scripts", "", "dissection scripts root, overrides scripts_dir")

	rootCmd.AddCommand(dissectCmd)
	rootCmd.AddCommand(checkCmd)
}

func loadConfig() (*vdissect.Config, error) {
	var cfg *vdissect.Config
	var err error
	if configFile != "" {
		cfg, err = vdissect.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = vdissect.NewConfig()
	}
	if scriptsDir != "" {
		cfg.ScriptsDir = scriptsDir
	}
	return cfg, cfg.Setup()
}
