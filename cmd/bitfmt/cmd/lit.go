package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	bitsx "github.com/calebcase/bitfmt/bits"
)

var litCmd = &cobra.Command{
	Use:   "lit <literal-string>",
	Short: "Parse a bit-source literal and print its length, hex, and binary form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bitsx.Parse(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("len:    %d bits\n", b.Len())
		fmt.Printf("hex:    %x\n", b.ToBytes())
		fmt.Printf("binary: %s\n", binaryString(b))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(litCmd)
}

func binaryString(b bitsx.Bits) string {
	out := make([]byte, b.Len())
	for i := 0; i < b.Len(); i++ {
		if b.MustBitAt(i) {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}
