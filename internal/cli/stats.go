package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if isText() {
		p := printer()
		p.Printf("%s (%d bytes)\n", stats.DBPath, stats.DBSizeBytes)
		if stats.Snapshot != nil {
			p.Printf("snapshot from %s at %s\n", stats.Snapshot.Origin, stats.Snapshot.TakenAt.Format("2006-01-02 15:04:05"))
		}
		p.Printf("%d posts, %d pages, %d tags, %d categories\n", stats.Posts, stats.Pages, stats.Tags, stats.Categories)
		p.Printf("%d runs recorded\n", stats.Runs)
		for _, t := range stats.Templates {
			p.Printf("  %-18s %d\n", t.Template, t.Pages)
		}
		return
	}
	printJSON(stats)
}
