package main

import "github.com/dxbchain/dxbforge/cmd"

func main() {
	cmd.Execute()
}
