package cmd

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/calebcase/bitfmt/dtype"
	"github.com/calebcase/bitfmt/internal/berr"
)

// parseValue converts a single command-line argument into the Go
// value dtype.Pack expects for d's kind. Only Single-shape dtypes are
// supported: the CLI is a thin boundary surface over one value at a
// time, not a schema-source front end that could supply a nested
// array/tuple literal.
func parseValue(d dtype.Dtype, s string) (interface{}, error) {
	if d.Shape() != dtype.Single {
		return nil, berr.BadDtype.New("bitfmt pack/unpack only supports single-shape dtypes from the command line, got shape %v", d.Shape())
	}

	switch d.Kind() {
	case dtype.UINT, dtype.INT:
		v, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, berr.BadDtype.New("%q is not a valid integer", s)
		}
		return v, nil
	case dtype.FLOAT:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, berr.BadDtype.New("%q is not a valid float: %v", s, err)
		}
		return v, nil
	case dtype.BOOL:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, berr.BadDtype.New("%q is not a valid bool: %v", s, err)
		}
		return v, nil
	case dtype.BYTES:
		v, err := hex.DecodeString(s)
		if err != nil {
			return nil, berr.BadDtype.New("%q is not valid hex: %v", s, err)
		}
		return v, nil
	case dtype.HEX, dtype.BIN, dtype.OCT:
		return s, nil
	default:
		return nil, berr.BadDtype.New("kind %v is not settable from a single command-line value", d.Kind())
	}
}
