package main

import "github.com/flashbots/fee-manager/cli"

func main() {
	cli.Main()
}
