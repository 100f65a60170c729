package main

import (
	"vaultd/internal/cli"
)

func main() {
	cli.Execute()
}
