package main

import (
	"github.com/charliek/tailboard/internal/cli"
)

func main() {
	cli.Execute()
}
