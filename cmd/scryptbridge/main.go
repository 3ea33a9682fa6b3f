package main

import (
	"context"
	"os"
)

func main() {
	if err := Execute(context.Background()); err != nil {
		if !jsonOutput {
			printError("%v", err)
		}
		os.Exit(1)
	}
}
