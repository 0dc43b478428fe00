package main

import "os"

func main() {
	if err := Execute(); err != nil {
		// Cobra already printed the error.
		os.Exit(1)
	}
}
