package main

import (
	"golang.org/x/tools/go/analysis"

	"basegraph.app/approvals/tools/linters/enumvalidator"
)

// New is the golangci-lint module plugin entry point.
func New(conf any) ([]*analysis.Analyzer, error) {
	return []*analysis.Analyzer{enumvalidator.Analyzer}, nil
}

// main is required for the package to build outside -buildmode=plugin.
func main() {}
