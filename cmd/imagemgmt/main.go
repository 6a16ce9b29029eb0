package main

import "github.com/fleetshift/imagemgmt/internal/cli"

func main() {
	cli.Execute()
}
