// Package main provides the sqlnest CLI.
package main

import "github.com/leapstack-labs/sqlnest/internal/cli"

func main() {
	cli.Execute()
}
