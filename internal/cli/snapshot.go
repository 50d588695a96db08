package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/pressplan/internal/source"
)

func init() {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Copy content from GraphQL or a file into the local database",
		Long:  "Fetch all content from the source and replace the local snapshot with it. Later commands can use --source db offline.",
		Run:   runSnapshot,
	}

	addSourceFlags(cmd)

	RootCmd.AddCommand(cmd)
}

func runSnapshot(cmd *cobra.Command, args []string) {
	src, err := openSource(cmd)
	if err != nil {
		exitErr("open source", err)
	}
	defer src.close()
	if src.origin == "db" {
		exitErr("snapshot", errSnapshotFromDB)
	}

	ctx := cmd.Context()
	content, err := source.Load(ctx, src)
	if err != nil {
		exitErr("fetch content", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.SaveContent(ctx, content, src.origin); err != nil {
		exitErr("save snapshot", err)
	}
	printContentCounts("snapshot", src.origin, content)
}
