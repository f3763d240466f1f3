// codeinventory lists every code entity of a category in a workspace.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/codeinventory/internal/category"
	"github.com/phobologic/codeinventory/internal/config"
	"github.com/phobologic/codeinventory/internal/discover"
	"github.com/phobologic/codeinventory/internal/enumerate"
	"github.com/phobologic/codeinventory/internal/format"
	"github.com/phobologic/codeinventory/internal/intent"
	"github.com/phobologic/codeinventory/internal/logging"
	"github.com/phobologic/codeinventory/internal/manifest"
	"github.com/phobologic/codeinventory/internal/model"
	"github.com/phobologic/codeinventory/internal/parse"
	"github.com/phobologic/codeinventory/internal/toon"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// app carries the global flags shared by every subcommand.
type app struct {
	configPath string
	verbose    int
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stderr: stderr}

	root := &cobra.Command{
		Use:   "codeinventory",
		Short: "Exhaustively list code entities by category",
		Long: `codeinventory answers "all the X in this codebase" questions with a
complete inventory: every CLI command, test file, class, endpoint and more,
grouped by directory and paginated on request.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("codeinventory {{.Version}}\n")

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: .codeinventory.toml or .yaml in the workspace)")
	root.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug)")

	root.AddCommand(
		newAskCmd(a),
		newListCmd(a),
		newEndpointsCmd(a),
		newFrameworksCmd(a),
		newCategoriesCmd(),
		newInitCmd(),
	)
	return root
}

// workspace resolves the optional path argument to an absolute directory.
func workspace(args []string, idx int) (string, error) {
	root := "."
	if len(args) > idx {
		root = args[idx]
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", root)
	}
	return root, nil
}

func (a *app) loadConfig(root string) (*config.Config, error) {
	if a.configPath != "" {
		return config.Load(a.configPath)
	}
	return config.LoadRoot(root)
}

func (a *app) logger(cfg *config.Config) *slog.Logger {
	level := logging.LevelFromString(cfg.LogLevel)
	if a.verbose > 0 {
		level = logging.LevelFromVerbosity(a.verbose)
	}
	return logging.New(a.stderr, level)
}

// enumerator builds an Enumerator for root from its config file and flags.
func (a *app) enumerator(root string) (*enumerate.Enumerator, error) {
	cfg, err := a.loadConfig(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	patterns, err := category.CompilePatterns(cfg.ConfigPatterns)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := a.logger(cfg)
	return &enumerate.Enumerator{
		Walker:         discover.Walker{SkipDirs: cfg.SkipDirs},
		Declarations:   &parse.Reader{Logger: logger, MaxFileSize: cfg.MaxFileSize},
		Logger:         logger,
		MaxEntities:    cfg.MaxEntities,
		PageSize:       cfg.PageSize,
		MaxFileSize:    cfg.MaxFileSize,
		ConfigPatterns: patterns,
	}, nil
}

func newAskCmd(a *app) *cobra.Command {
	var asTOON bool

	cmd := &cobra.Command{
		Use:   "ask <query> [path]",
		Short: "Answer a natural-language enumeration query",
		Example: `  codeinventory ask "list all endpoints"
  codeinventory ask "how many test files in src" ./repo
  codeinventory ask "find all functions named parseArgs"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			in := intent.Detect(args[0])
			if !in.IsEnumeration || in.Category == "" {
				_, _ = fmt.Fprintf(out, "Not an enumeration query (confidence %.2f).\n", in.Confidence)
				return nil
			}

			root, err := workspace(args, 1)
			if err != nil {
				return err
			}
			e, err := a.enumerator(root)
			if err != nil {
				return err
			}

			scope := intent.ParseScope(in.Filters)
			if scope.Directory == "" && scope.Name == "" {
				result, err := e.EnumerateByCategory(cmd.Context(), in.Category, root)
				if err != nil {
					return err
				}
				switch {
				case asTOON:
					_, _ = fmt.Fprintln(out, toon.EncodeResult(result))
				case in.QueryType == model.Count:
					_, _ = fmt.Fprintln(out, result.Explanation)
				default:
					_, _ = fmt.Fprint(out, format.EnumerationResult(result))
				}
				return nil
			}

			entities, err := e.EnumerateWithFilters(cmd.Context(), in.Category, root,
				enumerate.Filters{InDirectory: scope.Directory, Name: scope.Name})
			if err != nil {
				return err
			}
			page := enumerate.Paginate(entities, 0, 0)
			switch {
			case asTOON:
				_, _ = fmt.Fprintln(out, toon.EncodePage(page))
			case in.QueryType == model.Count:
				_, _ = fmt.Fprintln(out, scopedCount(in.Category, scope, page.Total))
			default:
				_, _ = fmt.Fprint(out, format.Page(page))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asTOON, "toon", false, "emit TOON instead of text")
	return cmd
}

// scopedCount phrases a filtered count the way an unfiltered result's
// explanation reads.
func scopedCount(c model.Category, scope intent.Scope, total int) string {
	plural := string(c)
	if def, ok := category.Lookup(c); ok {
		plural = def.Plural
	}
	var where []string
	if scope.Name != "" {
		where = append(where, fmt.Sprintf("named %s", scope.Name))
	}
	if scope.Directory != "" {
		where = append(where, fmt.Sprintf("in %s", scope.Directory))
	}
	return fmt.Sprintf("Found %d %s %s.", total, plural, strings.Join(where, " "))
}

func newListCmd(a *app) *cobra.Command {
	var (
		opts     enumerate.PageOptions
		sortBy   string
		order    string
		filters  enumerate.Filters
		exported bool
		asTOON   bool
	)

	cmd := &cobra.Command{
		Use:   "list <category> [path]",
		Short: "List one page of a category",
		Example: `  codeinventory list endpoints
  codeinventory list functions --exported --in src/api --sort file
  codeinventory list classes --offset 100 --limit 50 --toon`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := category.Parse(args[0])
			if !ok {
				return fmt.Errorf("unknown category %q (see codeinventory categories)", args[0])
			}
			root, err := workspace(args, 1)
			if err != nil {
				return err
			}
			e, err := a.enumerator(root)
			if err != nil {
				return err
			}

			opts.SortBy = enumerate.SortField(sortBy)
			opts.SortOrder = enumerate.SortOrder(order)
			if cmd.Flags().Changed("exported") {
				filters.Exported = enumerate.Bool(exported)
			}

			page, err := e.EnumerateWithFiltersPaginated(cmd.Context(), c, root, filters, opts)
			if err != nil {
				return err
			}

			if asTOON {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), toon.EncodePage(page))
			} else {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), format.Page(page))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Offset, "offset", 0, "index of the first entity to show")
	f.IntVar(&opts.Limit, "limit", 0, "page size (default from config, 100)")
	f.StringVar(&sortBy, "sort", string(enumerate.SortByName), "sort field: name or file")
	f.StringVar(&order, "order", string(enumerate.Ascending), "sort order: asc or desc")
	f.StringVar(&filters.InDirectory, "in", "", "only entities under this directory")
	f.StringVar(&filters.InFile, "file", "", "only entities in this file")
	f.StringVar(&filters.Name, "name", "", "only entities with this name (case-insensitive)")
	f.BoolVar(&exported, "exported", false, "only exported (or, with =false, unexported) declarations")
	f.BoolVar(&asTOON, "toon", false, "emit TOON instead of text")
	return cmd
}

func newEndpointsCmd(a *app) *cobra.Command {
	var asTOON bool

	cmd := &cobra.Command{
		Use:   "endpoints [path]",
		Short: "List HTTP endpoints across supported frameworks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := workspace(args, 0)
			if err != nil {
				return err
			}
			e, err := a.enumerator(root)
			if err != nil {
				return err
			}
			eps, err := e.GetEndpoints(cmd.Context(), root)
			if err != nil {
				return err
			}
			if asTOON {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), toon.EncodeEndpoints(eps))
			} else {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), format.Endpoints(eps))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asTOON, "toon", false, "emit TOON instead of text")
	return cmd
}

func newFrameworksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "frameworks [path]",
		Short: "Detect frameworks from dependency manifests",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := workspace(args, 0)
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig(root)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			d := &manifest.Detector{Logger: a.logger(cfg)}
			frameworks := d.Frameworks(root)
			out := cmd.OutOrStdout()
			for _, fw := range frameworks {
				_, _ = fmt.Fprintln(out, fw)
			}
			if cats := manifest.FrameworkCategories(frameworks); len(cats) > 0 {
				names := make([]string, len(cats))
				for i, c := range cats {
					names[i] = string(c)
				}
				_, _ = fmt.Fprintf(out, "Suggested categories: %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List supported categories and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			byCategory := make(map[model.Category][]string)
			for alias, c := range category.Aliases() {
				byCategory[c] = append(byCategory[c], alias)
			}
			out := cmd.OutOrStdout()
			for _, c := range category.SupportedCategories() {
				aliases := byCategory[c]
				sort.Strings(aliases)
				_, _ = fmt.Fprintf(out, "%s: %s\n", c, strings.Join(aliases, ", "))
			}
			return nil
		},
	}
}
