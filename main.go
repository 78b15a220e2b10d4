package main

import (
	"os"

	"github.com/Rigaud3000/StarTrader/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
