package main

import "github.com/Koora7334/minecraft-launcher-core/cmd/mcl/cmd"

func main() {
	cmd.Execute()
}
