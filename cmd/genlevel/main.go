package main

import (
	"flag"
	"fmt"
	"os"

	"chosenoffset.com/ns2d/internal/world/levelgen"
)

func main() {
	dataDir := flag.String("data", "data", "Data directory to write levels into")
	flag.Parse()

	fmt.Println("ns2d Level Generator")
	fmt.Println("====================")
	fmt.Println()

	if err := levelgen.Generate(*dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote tile sheet, atlas and sample levels to %s\n", *dataDir)
}
