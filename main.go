package main

import (
	"os"

	"github.com/skintellect/storefront/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
