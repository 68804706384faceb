package main

import "github.com/papapumpkin/ripple/cmd"

func main() {
	cmd.Execute()
}
