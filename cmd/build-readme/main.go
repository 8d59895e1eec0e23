// Command build-readme regenerates README.md from README.md.tmpl and the
// registered commands.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/keshon/motortown-bot/internal/auth"
	"github.com/keshon/motortown-bot/internal/commands"
	"github.com/keshon/motortown-bot/internal/config"
	"github.com/keshon/motortown-bot/internal/docs"
	"github.com/keshon/motortown-bot/pkg/cmd"
)

func main() {
	tmplPath := flag.String("template", "README.md.tmpl", "README template")
	outPath := flag.String("out", "README.md", "output file")
	prefix := flag.String("prefix", "!!", "text command prefix to document")
	flag.Parse()

	reg := cmd.NewRegistry()
	commands.Register(reg, &commands.Deps{TextPrefix: *prefix})

	gate := auth.NewGate(auth.NewAdminSet(nil))
	err := docs.UpdateReadme(*tmplPath, *outPath, reg, docs.Options{
		CategoryWeights: config.CategoryWeights,
		TextPrefix:      *prefix,
		Restricted:      gate.IsRestricted,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%s updated with %d commands\n", *outPath, len(reg.Names()))
}
