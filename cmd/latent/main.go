// Package main provides the latent command-line driver.
package main

import (
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

func main() {
	defer klog.Flush()

	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("latent %s\n", version)
	case "sample":
		if err := runSample(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "latent sample: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("latent - energy-based latent-variable models for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  sample     Relax a random batch and report its free energy")
	fmt.Println("")
	fmt.Println("Run 'latent sample -h' for sampling flags.")
}
