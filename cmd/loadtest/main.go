// Command loadtest generates synthetic skill exchange fixtures and drives
// match requests against a running skillmatch server.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
