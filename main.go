package main

import (
	"github.com/packdock/packdock/cmd"

	// Pack source providers register themselves on import.
	_ "github.com/packdock/packdock/provider"
)

func main() {
	cmd.Execute()
}
