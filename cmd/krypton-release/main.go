package main

import "github.com/gmw-project/vendor-krypton/cmd/krypton-release/cmd"

func main() {
	cmd.Execute()
}
