/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/muninn/pkg/config"
	"github.com/ssargent/muninn/pkg/flash"
	"github.com/ssargent/muninn/pkg/store"
)

var (
	cfg         *config.Config
	device      *flash.FileDevice
	recordStore *store.RecordStore
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "muninn",
	Short: "Muninn - Single-block flash record manager",
	Long: `Muninn manages length-prefixed records on raw flash, one record per
erasable block, with a monotonic per-block write counter that survives
erases.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init creates the config and image itself.
		if cmd.Name() == "init" {
			return nil
		}

		var err error
		cfg, err = resolveConfig(cmd)
		if err != nil {
			return err
		}

		device, err = flash.OpenFileDevice(cfg.ImagePath, cfg.Geometry)
		if err != nil {
			return fmt.Errorf("failed to open flash image: %w", err)
		}

		recordStore, err = store.NewRecordStore(store.RecordStoreConfig{
			Geometry: cfg.Geometry,
			Device:   device,
		})
		if err != nil {
			device.Close()
			return fmt.Errorf("failed to create record store: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if device != nil {
			return device.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/muninn/config.yaml)")
	rootCmd.PersistentFlags().StringP("image", "i", "", "Path to the flash image file")
	rootCmd.PersistentFlags().Uint64("block-size", 0, "Erasable block size in bytes")
	rootCmd.PersistentFlags().Uint64("target-base", 0, "Absolute address where the record region begins")
	rootCmd.PersistentFlags().Uint64("device-size", 0, "Size of the record region in bytes")
}

// resolveConfig builds the effective configuration: explicit config
// file, then the default config file if one exists, then built-in
// defaults. Geometry and image flags override whatever was loaded.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var c *config.Config
	switch {
	case configPath != "":
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		c = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		c = loaded
	default:
		c = config.DefaultConfig()
	}

	if image, _ := cmd.Flags().GetString("image"); image != "" {
		c.ImagePath = image
	}
	if cmd.Flags().Changed("block-size") {
		c.Geometry.BlockSize, _ = cmd.Flags().GetUint64("block-size")
	}
	if cmd.Flags().Changed("target-base") {
		c.Geometry.TargetBase, _ = cmd.Flags().GetUint64("target-base")
	}
	if cmd.Flags().Changed("device-size") {
		c.Geometry.DeviceSize, _ = cmd.Flags().GetUint64("device-size")
	}

	if err := c.Geometry.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
