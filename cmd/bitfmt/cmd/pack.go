package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calebcase/bitfmt/dtype"
)

var packCmd = &cobra.Command{
	Use:   "pack <dtype-string> <value>",
	Short: "Pack a value into bits according to a dtype string",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dtype.Parse(args[0])
		if err != nil {
			return err
		}

		v, err := parseValue(d, args[1])
		if err != nil {
			return err
		}

		b, err := d.Pack(v)
		if err != nil {
			return err
		}

		fmt.Printf("len: %d bits\n", b.Len())
		fmt.Printf("hex: %x\n", b.ToBytes())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(packCmd)
}
