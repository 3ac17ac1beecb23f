// foodctl manages the food-exchange table and runs the calculator and sampler
// offline.
//
// Usage: go run ./cmd/foodctl <command> (DB_URL from .env or --db)
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
