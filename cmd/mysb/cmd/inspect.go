package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-mysb/ihex"
	"github.com/moffa90/go-mysb/protocol"
)

var (
	inspectStrict  bool
	inspectBlock   int
	inspectDump    bool
	inspectType    uint16
	inspectVersion uint16
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <firmware.hex>",
	Short: "Show how a firmware file is served to nodes",
	Long: `Load an Intel-HEX firmware file the way the bridge does and print its size,
block count and CRC, the firmware configuration payload a node would receive,
and optionally a single block or the padded image.

Examples:
  mysb inspect firmware.hex
  mysb inspect --strict --fw-type 1 --fw-version 2 firmware.hex
  mysb inspect --block 0 firmware.hex
  mysb inspect --dump firmware.hex > padded.hex`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectStrict, "strict", false,
		"validate record checksums and reject overlapping records")
	inspectCmd.Flags().IntVarP(&inspectBlock, "block", "b", -1,
		"print the firmware response payload for this block")
	inspectCmd.Flags().BoolVar(&inspectDump, "dump", false,
		"write the served image as Intel-HEX instead of the summary")
	inspectCmd.Flags().Uint16Var(&inspectType, "fw-type", 1, "firmware type for the printed payloads")
	inspectCmd.Flags().Uint16Var(&inspectVersion, "fw-version", 1, "firmware version for the printed payloads")
}

func runInspect(cmd *cobra.Command, args []string) error {
	var opts []ihex.Option
	if inspectStrict {
		opts = append(opts, ihex.Strict())
	}

	img, err := ihex.Load(args[0], opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if inspectDump {
		return ihex.Encode(out, 0, img.Data[:img.Size()])
	}

	cfg := protocol.FirmwareConfig{
		Type:    inspectType,
		Version: inspectVersion,
		Blocks:  img.Blocks,
		CRC:     img.CRC,
	}

	fmt.Fprintf(out, "File:    %s\n", args[0])
	fmt.Fprintf(out, "Size:    %d bytes\n", img.Size())
	fmt.Fprintf(out, "Blocks:  %d\n", img.Blocks)
	fmt.Fprintf(out, "CRC:     0x%04X\n", img.CRC)
	fmt.Fprintf(out, "Config:  %s\n", cfg.Encode())

	if inspectBlock < 0 {
		return nil
	}

	if inspectBlock >= int(img.Blocks) {
		return fmt.Errorf("block %d is out of range: firmware has %d blocks", inspectBlock, img.Blocks)
	}
	data, _ := img.Block(uint16(inspectBlock))

	resp := protocol.FirmwareResponse{
		FirmwareRequest: protocol.FirmwareRequest{
			Type:    inspectType,
			Version: inspectVersion,
			Block:   uint16(inspectBlock),
		},
		Data: data,
	}
	fmt.Fprintf(out, "Block:   %s\n", resp.Encode())

	return nil
}
