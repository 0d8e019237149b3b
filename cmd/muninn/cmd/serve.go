/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/muninn/pkg/api"
	"github.com/ssargent/muninn/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the Muninn REST API server over the flash image.

Records are exposed under /api/v1/records/{offset} with X-API-Key
authentication; prometheus metrics are served on /metrics.

Examples:
  muninn serve --api-key=mysecretkey --port=8080
  muninn serve --image=./data/flash.img`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		if !cmd.Flags().Changed("port") {
			port = cfg.Port
		}

		apiKey, _ := cmd.Flags().GetString("api-key")
		if apiKey == "" {
			apiKey = cfg.Security.APIKey
		}
		if apiKey == "" || apiKey == "auto" {
			generated, err := config.GenerateSecureKey(32)
			if err != nil {
				cmd.Printf("Error generating API key: %v\n", err)
				return
			}
			apiKey = generated
			cmd.Printf("Generated API key: %s\n", apiKey)
		}

		serverConfig := api.ServerConfig{
			Port:   port,
			Bind:   cfg.Bind,
			APIKey: apiKey,
		}

		fmt.Printf("Serving flash image %s on %s:%d\n", cfg.ImagePath, cfg.Bind, port)
		if err := api.StartServer(recordStore, serverConfig); err != nil {
			cmd.Printf("Error starting server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("api-key", "", "API key for authentication (generated when omitted)")
}
