package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/flexprice/invoicer/scripts/internal"
)

// Command represents a script that can be run
type Command struct {
	Name        string
	Description string
	Run         func() error
}

var commands = []Command{
	{
		Name:        "seed-invoices",
		Description: "Seed random invoices through the invoice service",
		Run:         internal.SeedInvoices,
	},
	{
		Name:        "export-pdfs",
		Description: "Render every stored invoice to a local PDF file",
		Run:         internal.ExportInvoicePDFs,
	},
}

func main() {
	var (
		listCommands bool
		cmdName      string
		count        string
		outputDir    string
	)

	flag.BoolVar(&listCommands, "list", false, "List all available commands")
	flag.StringVar(&cmdName, "cmd", "", "Command to run")
	flag.StringVar(&count, "count", "", "Number of invoices to seed")
	flag.StringVar(&outputDir, "output-dir", "", "Directory for exported PDFs")

	flag.Parse()

	if listCommands {
		fmt.Println("Available commands:")
		for _, cmd := range commands {
			fmt.Printf("  %-20s %s\n", cmd.Name, cmd.Description)
		}
		return
	}

	if cmdName == "" {
		log.Fatal("Please specify a command to run using -cmd flag. Use -list to see available commands.")
	}

	// Set command-specific environment variables
	if count != "" {
		os.Setenv("NUM_INVOICES", count)
	}
	if outputDir != "" {
		os.Setenv("OUTPUT_DIR", outputDir)
	}

	for _, cmd := range commands {
		if cmd.Name == cmdName {
			if err := cmd.Run(); err != nil {
				log.Fatalf("Error running command %s: %v", cmdName, err)
			}
			return
		}
	}

	log.Fatalf("Unknown command: %s. Use -list to see available commands.", cmdName)
}
