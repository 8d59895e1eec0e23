// Package docs renders the command reference into README.md.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"

	"github.com/keshon/motortown-bot/internal/command"
	"github.com/keshon/motortown-bot/pkg/cmd"
)

// Options controls how commands are listed.
type Options struct {
	// CategoryWeights maps category name to sort order (lower first).
	CategoryWeights map[string]int
	// TextPrefix is shown next to each slash name as the text alternative.
	TextPrefix string
	// Restricted reports whether a command is admin-only. nil means none are.
	Restricted func(name string) bool
}

// CommandSections renders one markdown section per category.
func CommandSections(registry *cmd.Registry, opts Options) string {
	commands := registry.GetAll()
	sort.SliceStable(commands, func(i, j int) bool {
		wi := opts.CategoryWeights[command.Category(commands[i])]
		wj := opts.CategoryWeights[command.Category(commands[j])]
		if wi == wj {
			return commands[i].Name() < commands[j].Name()
		}
		return wi < wj
	})

	var buf bytes.Buffer
	currentCategory := ""
	for i, c := range commands {
		cat := command.Category(c)
		if cat == "" {
			cat = "Other"
		}
		if i == 0 || cat != currentCategory {
			if i > 0 {
				buf.WriteString("\n")
			}
			currentCategory = cat
			fmt.Fprintf(&buf, "### %s\n\n", currentCategory)
		}

		lock := ""
		if opts.Restricted != nil && opts.Restricted(c.Name()) {
			lock = " 🔒"
		}
		fmt.Fprintf(&buf, "- **/%s** (`%s%s`)%s — %s\n", c.Name(), opts.TextPrefix, c.Name(), lock, c.Description())
		if usage, example, ok := command.Usage(c); ok {
			fmt.Fprintf(&buf, "  - Usage: `%s%s`, e.g. `%s%s`\n", opts.TextPrefix, usage, opts.TextPrefix, example)
		}
	}
	return buf.String()
}

// Render executes the README template with the rendered command sections
// available as {{.CommandSections}}.
func Render(w io.Writer, tmplText string, registry *cmd.Registry, opts Options) error {
	tmpl, err := template.New("readme").Parse(tmplText)
	if err != nil {
		return fmt.Errorf("parse readme template: %w", err)
	}
	data := struct {
		CommandSections string
	}{
		CommandSections: CommandSections(registry, opts),
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render readme: %w", err)
	}
	return nil
}

// UpdateReadme regenerates outPath from the template at tmplPath.
func UpdateReadme(tmplPath, outPath string, registry *cmd.Registry, opts Options) error {
	tmplText, err := os.ReadFile(tmplPath)
	if err != nil {
		return fmt.Errorf("read readme template: %w", err)
	}

	var out bytes.Buffer
	if err := Render(&out, string(tmplText), registry, opts); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write readme: %w", err)
	}
	return nil
}
