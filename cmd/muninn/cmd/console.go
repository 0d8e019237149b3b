package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var consoleCompleter = readline.NewPrefixCompleter(
	readline.PcItem("FLASH_WRITE"),
	readline.PcItem("FLASH_READ"),
	readline.PcItem("FLASH_ERASE"),
	readline.PcItem("FLASH_INFO"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive flash console",
	Long: `Open an interactive console against the flash image.

Commands:
  FLASH_WRITE <offset> <data>   write a record (data may be quoted text)
  FLASH_READ <offset>           read a record's payload
  FLASH_ERASE <offset>          erase a record, keeping its counter
  FLASH_INFO <offset>           show write count and payload length
  help                          show this help
  exit                          leave the console`,
	Run: func(cmd *cobra.Command, args []string) {
		historyFile := filepath.Join(os.TempDir(), ".muninn_history")
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "muninn> ",
			HistoryFile:     historyFile,
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
			AutoComplete:    consoleCompleter,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing readline: %s\n", err)
			os.Exit(1)
		}
		defer rl.Close()

		fmt.Printf("Muninn console on %s (block size %d, capacity %d)\n",
			cfg.ImagePath, cfg.Geometry.BlockSize, recordStore.Capacity())
		fmt.Println("Type 'help' for available commands, 'exit' to quit")

		for {
			line, readErr := rl.Readline()
			if readErr != nil {
				if readErr == readline.ErrInterrupt {
					if len(line) == 0 {
						break
					}
					continue
				} else if readErr == io.EOF {
					fmt.Println("Goodbye!")
					break
				}
				fmt.Fprintf(os.Stderr, "Error reading input: %s\n", readErr)
				continue
			}

			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				fmt.Println("Goodbye!")
				break
			}
			if line == "help" {
				fmt.Println(cmd.Long)
				continue
			}

			if err := runConsoleCommand(line); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		}
	},
}

func runConsoleCommand(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	verb := strings.ToUpper(fields[0])

	if len(fields) < 2 {
		return fmt.Errorf("%s requires an offset", verb)
	}
	offset, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return fmt.Errorf("bad offset %q: %w", fields[1], err)
	}

	switch verb {
	case "FLASH_WRITE":
		if len(fields) < 3 {
			return fmt.Errorf("FLASH_WRITE requires an offset and data")
		}
		data := strings.TrimSpace(line[strings.Index(line, fields[1])+len(fields[1]):])
		data = strings.Trim(data, `"`)
		if err := recordStore.Write(offset, []byte(data)); err != nil {
			return err
		}
		fmt.Printf("OK: wrote %d bytes (write count %d)\n",
			len(data), recordStore.WriteCount(offset))

	case "FLASH_READ":
		record, err := recordStore.ReadRecord(offset)
		if err != nil {
			return err
		}
		if isPrintable(record.Payload) {
			fmt.Printf("%s\n", record.Payload)
		} else {
			fmt.Printf("%s\n", hex.EncodeToString(record.Payload))
		}

	case "FLASH_ERASE":
		if err := recordStore.Erase(offset); err != nil {
			return err
		}
		fmt.Printf("OK: erased (write count %d preserved)\n", recordStore.WriteCount(offset))

	case "FLASH_INFO":
		fmt.Printf("write count %d, payload length %d\n",
			recordStore.WriteCount(offset), recordStore.PayloadLength(offset))

	default:
		return fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
	return nil
}

func isPrintable(data []byte) bool {
	for _, b := range data {
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
