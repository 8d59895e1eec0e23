// Command cli checks the bot configuration offline: it loads the environment
// the same way the bot does, reports every validation problem and prints the
// admin seed list and the player mapping table.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rodaine/table"

	"github.com/keshon/motortown-bot/internal/config"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	if err := check(os.Stdout, *envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func check(w io.Writer, envFile string) error {
	if config.LoadDotEnv(envFile) {
		fmt.Fprintf(w, "Loaded %s\n", envFile)
	}

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	fmt.Fprintf(w, "API: %s\n", cfg.BaseURL())
	fmt.Fprintf(w, "Command prefix: %s\n\n", cfg.Prefix)

	admins := table.New("#", "Admin User ID").WithWriter(w)
	for i, id := range cfg.AdminIDs {
		admins.AddRow(i+1, id)
	}
	admins.Print()
	fmt.Fprintf(w, "%d admin(s)\n\n", len(cfg.AdminIDs))

	mapping := cfg.MappingTable()
	mappings := table.New("Unique ID", "Value", "Kind").WithWriter(w)
	for _, m := range mapping.All() {
		mappings.AddRow(m.UniqueID, m.Value, m.Kind)
	}
	mappings.Print()
	fmt.Fprintf(w, "%d mapping(s)\n", mapping.Len())

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}
	fmt.Fprintln(w, "Configuration OK")
	return nil
}
