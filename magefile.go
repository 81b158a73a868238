//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "blogtrans"

// Default target to run when none is specified
var Default = Build

// Build builds the blogtrans binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/blogtrans")
}

// Install installs blogtrans into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/blogtrans")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Integration runs the tests that talk to the hosted backends. They skip
// themselves without OPENAI_API_KEY or GEMINI_API_KEY.
func Integration() error {
	if os.Getenv("OPENAI_API_KEY") == "" && os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Println("Neither OPENAI_API_KEY nor GEMINI_API_KEY is set, integration tests will skip")
	}
	return sh.RunV("go", "test", "-count=1", "-run", "Integration", "./...")
}

// Clean removes the built binary
func Clean() error {
	return sh.Rm(binary)
}
