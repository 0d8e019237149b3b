package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <offset>",
	Short: "Read the record stored at an offset",
	Long: `Read the record stored at a block-aligned offset and print its
payload.

Example:
  muninn read 0x1000
  muninn read 4096 --hex`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		offset, err := strconv.ParseUint(args[0], 0, 64)
		if err != nil {
			fmt.Printf("Error parsing offset: %v\n", err)
			return
		}

		record, err := recordStore.ReadRecord(offset)
		if err != nil {
			fmt.Printf("Error reading record: %v\n", err)
			return
		}

		if asHex, _ := cmd.Flags().GetBool("hex"); asHex {
			fmt.Printf("%s\n", hex.EncodeToString(record.Payload))
			return
		}
		os.Stdout.Write(record.Payload)
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().Bool("hex", false, "Print the payload as a hex string")
}
