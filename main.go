// Command covcheck gates CI builds on the issue counts of Coverity Connect
// views and validates connections to configured Coverity instances.
package main

import "covcheck/internal/cli"

func main() {
	cli.Execute()
}
