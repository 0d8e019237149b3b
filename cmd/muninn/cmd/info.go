package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <offset>",
	Short: "Show record metadata",
	Long: `Show the metadata of the record at a block-aligned offset: validity,
write count, and payload length.

Example:
  muninn info 0x1000`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		offset, err := strconv.ParseUint(args[0], 0, 64)
		if err != nil {
			fmt.Printf("Error parsing offset: %v\n", err)
			return
		}

		record, err := recordStore.ReadRecord(offset)
		valid := err == nil

		fmt.Printf("Offset:         0x%x\n", offset)
		fmt.Printf("Valid:          %v\n", valid)
		fmt.Printf("Write count:    %d\n", recordStore.WriteCount(offset))
		if valid {
			fmt.Printf("Payload length: %d\n", record.PayloadLen)
		} else {
			fmt.Printf("Payload length: %d\n", recordStore.PayloadLength(offset))
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
