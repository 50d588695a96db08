// Package cli implements the pressplan CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rcliao/pressplan/internal/config"
	"github.com/rcliao/pressplan/internal/source"
	"github.com/rcliao/pressplan/internal/store"
)

var (
	dbPath     string
	graphqlURL string
	formatFlag string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "pressplan",
	Short: "Plan the static pages of a WordPress-backed site",
	Long: "Fetches posts, pages, tags and categories from WPGraphQL (or a local snapshot) " +
		"and plans every page a static build renders: paths, templates and template variables.",
	PersistentPreRun: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $PRESSPLAN_DB or ~/.pressplan/pressplan.db)")
	RootCmd.PersistentFlags().StringVar(&graphqlURL, "graphql-url", "", "WPGraphQL endpoint (default: $PRESSPLAN_GRAPHQL_URL)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func setup(cmd *cobra.Command, args []string) {
	c, err := config.Load()
	if err != nil {
		exitErr("load config", err)
	}
	cfg = c

	level, _ := config.ParseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if formatFlag != "json" && formatFlag != "text" {
		exitErr("format", fmt.Errorf("unknown format %q", formatFlag))
	}
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.DBPath
}

func getGraphQLURL() string {
	if graphqlURL != "" {
		return graphqlURL
	}
	return cfg.GraphQLURL
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "Content source: graphql, file or db (default: graphql when a URL is set, else db)")
	cmd.Flags().String("file", "", "Content JSON file for --source file")
}

// contentSource is an opened content source. close releases whatever it
// holds; origin names it in the run ledger.
type contentSource struct {
	source.Source
	origin string
	close  func()
}

// Session forwards to the wrapped source so each plan starts uncached.
func (c *contentSource) Session() source.Source {
	return source.Session(c.Source)
}

func openSource(cmd *cobra.Command) (*contentSource, error) {
	kind, _ := cmd.Flags().GetString("source")
	file, _ := cmd.Flags().GetString("file")
	if kind == "" {
		switch {
		case file != "":
			kind = "file"
		case getGraphQLURL() != "":
			kind = "graphql"
		default:
			kind = "db"
		}
	}

	switch kind {
	case "graphql":
		url := getGraphQLURL()
		if url == "" {
			return nil, fmt.Errorf("no GraphQL endpoint (set --graphql-url or $PRESSPLAN_GRAPHQL_URL)")
		}
		src := source.NewGraphQLSource(url,
			source.WithBatchSize(cfg.BatchSize),
			source.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
			source.WithLogger(logger),
		)
		return &contentSource{Source: src, origin: "graphql:" + url, close: func() {}}, nil
	case "file":
		if file == "" {
			return nil, fmt.Errorf("--source file needs --file")
		}
		src, err := source.NewFileSource(file)
		if err != nil {
			return nil, err
		}
		return &contentSource{Source: src, origin: "file:" + file, close: func() {}}, nil
	case "db":
		s, err := openStore()
		if err != nil {
			return nil, err
		}
		return &contentSource{Source: s, origin: "db", close: func() { s.Close() }}, nil
	}
	return nil, fmt.Errorf("unknown source %q", kind)
}

func isText() bool {
	return formatFlag == "text"
}

func printer() *message.Printer {
	return message.NewPrinter(language.English)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
