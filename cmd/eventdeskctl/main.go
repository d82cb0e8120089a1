// Command eventdeskctl runs maintenance tasks against the EventDesk database:
// seeding sample data, creating admins and exporting registrations.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
