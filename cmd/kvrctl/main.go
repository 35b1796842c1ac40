package main

import (
	"github.com/KingdomVR/kvr-go-database/internal/cli"
)

func main() {
	cli.Execute()
}
