package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	sentinelStart = "<!-- codeinventory:start -->"
	sentinelEnd   = "<!-- codeinventory:end -->"
)

// newInitCmd implements `codeinventory init`, which writes (or updates) a
// codeinventory usage section in a CLAUDE.md file.
func newInitCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [path-to-CLAUDE.md]",
		Short: "Write a codeinventory usage section to CLAUDE.md",
		Long: `Write a codeinventory usage section to a CLAUDE.md file. The section is
wrapped in sentinel comments so it can be updated in place on subsequent runs
without touching surrounding content. Creates the file if it does not exist.

path-to-CLAUDE.md defaults to ./CLAUDE.md.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args, dryRun, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

func runInit(args []string, dryRun bool, stdout, stderr io.Writer) error {
	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := "CLAUDE.md"
	if len(args) > 0 {
		path = args[0]
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote codeinventory section to %s\n", path)
	return nil
}

// generateSection returns the full sentinel-wrapped codeinventory documentation block.
func generateSection() string {
	body := `## codeinventory: Exhaustive Code Inventory

Use ` + "`codeinventory`" + ` via the Bash tool whenever a task asks about *all* of
something in the codebase ("how many endpoints are there?", "list every test
file", "find all React hooks"). Search tools return a best-effort sample;
codeinventory returns the complete set, grouped by directory.

**Availability:** Check with ` + "`codeinventory --version`" + ` first; skip gracefully
if not found.

**Run it:**
` + "```" + `bash
codeinventory ask "list all endpoints"            # natural-language query
codeinventory ask "how many test files in src"     # scoped count
codeinventory list functions --exported --in src  # filtered category
codeinventory list classes --offset 100 --limit 50 --sort file
codeinventory endpoints --toon                    # HTTP routes, agent format
codeinventory frameworks                          # detected from manifests
codeinventory categories                          # names and aliases
` + "```" + `

**Configuration:** Optional ` + "`.codeinventory.toml`" + ` (or ` + "`.yaml`" + `) at the
workspace root sets ` + "`max_entities`" + `, ` + "`page_size`" + `, ` + "`skip_dirs`" + `,
` + "`config_patterns`" + `, ` + "`max_file_size`" + ` and ` + "`log_level`" + `.

**All flags:** ` + "`codeinventory --help`" + `

**How to use the output:**

1. **Trust the count.** Results are exhaustive up to the safety ceiling; a
   truncation notice is printed when the ceiling is hit.

2. **Page instead of re-running.** When ` + "`list`" + ` reports more results, repeat
   it with the printed ` + "`--offset`" + ` rather than widening the query.

3. **Only fall back to Glob/Grep for things codeinventory cannot answer**,
   e.g. usages of a symbol or content inside a file you've already found.`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
