package main

import "github.com/wormhole-demo/sei-relayer/cmd"

func main() {
	cmd.Execute()
}
