package main

import "basegraph.app/approvals/internal/cli"

func main() {
	cli.Execute()
}
