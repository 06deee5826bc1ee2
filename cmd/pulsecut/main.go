package main

import "github.com/pulsecut/pulsecut/internal/cli"

func main() {
	cli.Main()
}
