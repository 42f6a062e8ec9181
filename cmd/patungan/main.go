package main

import (
	"os"

	"github.com/mmynk/patungan/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
