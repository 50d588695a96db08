package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/pressplan/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a content JSON document as the snapshot",
		Long:  "Replace the local content snapshot with a JSON document (stdin or file). Expects the format produced by export.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	in := io.Reader(os.Stdin)
	origin := "import:stdin"
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open file", err)
		}
		defer f.Close()
		in, origin = f, "import:"+args[0]
	}

	data, err := io.ReadAll(in)
	if err != nil {
		exitErr("read input", err)
	}

	var content model.Content
	if err := json.Unmarshal(data, &content); err != nil {
		exitErr("parse json", err)
	}
	model.LinkSiblings(content.Posts)

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.SaveContent(cmd.Context(), &content, origin); err != nil {
		exitErr("import", err)
	}
	printContentCounts("import", origin, &content)
}
