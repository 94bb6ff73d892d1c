package main

import "github.com/andrescamacho/garmentflow/internal/adapters/cli"

func main() {
	cli.Execute()
}
