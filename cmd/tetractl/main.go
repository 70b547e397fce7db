package main

import (
	"github.com/tetranet/tetranet/internal/cli"
)

func main() {
	cli.Execute()
}
