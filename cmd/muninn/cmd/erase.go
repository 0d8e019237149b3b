package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// eraseCmd represents the erase command
var eraseCmd = &cobra.Command{
	Use:   "erase <offset>",
	Short: "Erase the record at an offset, keeping its write counter",
	Long: `Erase the block at a block-aligned offset. The payload is destroyed
but the block's write counter is preserved, so the next write continues
the count.

Example:
  muninn erase 0x1000`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		offset, err := strconv.ParseUint(args[0], 0, 64)
		if err != nil {
			fmt.Printf("Error parsing offset: %v\n", err)
			return
		}

		if err := recordStore.Erase(offset); err != nil {
			fmt.Printf("Error erasing record: %v\n", err)
			return
		}

		fmt.Printf("Erased record at offset 0x%x (write count %d preserved)\n",
			offset, recordStore.WriteCount(offset))
	},
}

func init() {
	rootCmd.AddCommand(eraseCmd)
}
