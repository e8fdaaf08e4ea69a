package main

import (
	"os"

	"github.com/alpacahq/walrecover/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
