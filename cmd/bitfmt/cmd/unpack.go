package cmd

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	bitsx "github.com/calebcase/bitfmt/bits"
	"github.com/calebcase/bitfmt/dtype"
)

var unpackCmd = &cobra.Command{
	Use:   "unpack <dtype-string> <literal-string>",
	Short: "Parse a literal and unpack it according to a dtype string",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := dtype.Parse(args[0])
		if err != nil {
			return err
		}

		b, err := bitsx.Parse(args[1])
		if err != nil {
			return err
		}

		v, err := d.Unpack(b)
		if err != nil {
			return err
		}

		spew.Dump(v)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(unpackCmd)
}
