package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"surfex/internal/apischema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the canonical document schema",
	Long: `Print the versioned schema every report is validated against, as a JSON
Schema projection keyed by kind discriminator.

Examples:
  surfex schema
  surfex schema > document-schema.json`,
	Run: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) {
	validator := apischema.New()

	kinds, err := validator.JSONSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error projecting schema: %v\n", err)
		os.Exit(1)
	}

	payload := map[string]interface{}{
		"version": apischema.Version,
		"kinds":   kinds,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
