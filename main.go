// Package main is the entry point for the SecureHLS CLI.
package main

import "securehls.dev/pkg/securehls/cmd"

func main() {
	cmd.Execute()
}
