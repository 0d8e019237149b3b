/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/muninn/pkg/config"
	"github.com/ssargent/muninn/pkg/flash"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a Muninn config file and flash image",
	Long: `Initialize Muninn for local development.

This command will:
- Write a config file with a generated API key
- Create the flash image file, fully erased

Examples:
  muninn init
  muninn init --image=./data/flash.img --config=./muninn.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		imagePath, _ := cmd.Flags().GetString("image")
		force, _ := cmd.Flags().GetBool("force")

		if configPath == "" {
			configPath = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(configPath) && !force {
			cmd.Printf("Config already exists at %s. Use --force to reinitialize.\n", configPath)
			return
		}

		cmd.Printf("Initializing Muninn...\n")

		bootstrapped, err := config.BootstrapConfig(configPath, imagePath)
		if err != nil {
			cmd.Printf("Error bootstrapping config: %v\n", err)
			os.Exit(1)
		}

		dev, err := flash.OpenFileDevice(bootstrapped.ImagePath, bootstrapped.Geometry)
		if err != nil {
			cmd.Printf("Error creating flash image: %v\n", err)
			os.Exit(1)
		}
		dev.Close()

		cmd.Printf("✅ Muninn initialization completed successfully!\n")
		cmd.Printf("Config: %s\n", configPath)
		cmd.Printf("Flash image: %s (%d bytes, block size %d)\n",
			bootstrapped.ImagePath, bootstrapped.Geometry.DeviceSize, bootstrapped.Geometry.BlockSize)
		cmd.Printf("API key: %s\n", bootstrapped.Security.APIKey)
		cmd.Printf("\nYou can now start the server with:\n")
		cmd.Printf("  muninn serve --config=%s\n", configPath)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Force reinitialization even if a config already exists")
}
