// Package main provides the entry point for the hyref command.
package main

import "layout-hypertext/internal/cli"

func main() {
	cli.Execute()
}
