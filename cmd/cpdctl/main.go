// Command cpdctl works with the CPD tracker data from the terminal: it
// reports compliance, renders the PDF report, exports and restores backups,
// and talks to a running server's document-analysis endpoint.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
