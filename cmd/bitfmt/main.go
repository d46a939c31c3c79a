package main

import "github.com/calebcase/bitfmt/cmd/bitfmt/cmd"

func main() {
	cmd.Execute()
}
