// Package main provides the entry point for the obad LDAP directory
// server.
package main

import "os"

func main() {
	os.Exit(run(os.Args))
}

// run executes the CLI and returns an exit code. Separated from main so
// it can be exercised without calling os.Exit.
func run(args []string) int {
	return serveCmd(args[1:])
}
