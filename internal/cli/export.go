package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/pressplan/internal/model"
)

var errSnapshotFromDB = errors.New("source is already the local database; use --source graphql or --source file")

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the content snapshot as JSON",
		Long:  "Export the local content snapshot as one JSON document, the format import and --source file read.",
		Run:   runExport,
	}

	cmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	output, _ := cmd.Flags().GetString("output")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	content, err := s.ExportContent(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(content, "", "  ")
	if output == "" {
		fmt.Println(string(b))
		return
	}
	if err := os.WriteFile(output, append(b, '\n'), 0o644); err != nil {
		exitErr("write export", err)
	}
	printContentCounts("export", output, content)
}

func printContentCounts(action, target string, c *model.Content) {
	if isText() {
		p := printer()
		p.Printf("%s %s: %d posts, %d pages, %d tags, %d categories (%d posts per page)\n",
			action, target, len(c.Posts), len(c.Pages), len(c.Tags), len(c.Categories), c.Settings.PostsPerPage)
		return
	}
	printJSON(map[string]any{
		"ok":             true,
		action:           target,
		"posts":          len(c.Posts),
		"pages":          len(c.Pages),
		"tags":           len(c.Tags),
		"categories":     len(c.Categories),
		"posts_per_page": c.Settings.PostsPerPage,
	})
}
