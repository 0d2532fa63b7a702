package main

import "github.com/drei/wdpass/cmd"

func main() {
	cmd.Execute()
}
