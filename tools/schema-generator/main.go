// Command schema-generator writes the JSON Schema of gerrit-hooks.yml so
// editors can validate configuration files.
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/gerrit-hooks/config"
	"github.com/spf13/pflag"
)

func main() {
	output := pflag.StringP("output", "o", "gerrit-hooks.schema.json", "File to write the schema to")
	pflag.Parse()

	schemaBytes, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Error creating schema directory: %v", err)
		}
	}

	if err := os.WriteFile(*output, append(schemaBytes, '\n'), 0o644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated schema at %s", *output)
}
