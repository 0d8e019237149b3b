package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write <offset> <data>",
	Short: "Write a record at a block-aligned offset",
	Long: `Write a record at a block-aligned offset. The block is erased first
and the record's write counter is carried forward and incremented.

Example:
  muninn write 0x1000 "sensor calibration v2"
  muninn write 4096 deadbeef --hex`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		offset, err := strconv.ParseUint(args[0], 0, 64)
		if err != nil {
			fmt.Printf("Error parsing offset: %v\n", err)
			return
		}

		payload := []byte(args[1])
		if asHex, _ := cmd.Flags().GetBool("hex"); asHex {
			payload, err = hex.DecodeString(args[1])
			if err != nil {
				fmt.Printf("Error decoding hex payload: %v\n", err)
				return
			}
		}

		if err := recordStore.Write(offset, payload); err != nil {
			fmt.Printf("Error writing record: %v\n", err)
			return
		}

		fmt.Printf("Wrote %d bytes at offset 0x%x (write count %d)\n",
			len(payload), offset, recordStore.WriteCount(offset))
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().Bool("hex", false, "Treat <data> as a hex string")
}
