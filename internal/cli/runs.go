package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/pressplan/internal/store"
)

func init() {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Run:   runRuns,
	}
	runsCmd.Flags().IntP("limit", "l", 20, "Max results")

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a recorded run and its pages",
		Long:  "Show one run from the ledger. The id may be any unique prefix.",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}
	showCmd.Flags().Bool("paths", false, "With --format text, list every path")

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		Run:   runPrune,
	}
	pruneCmd.Flags().IntP("keep", "k", 10, "Runs to keep")

	RootCmd.AddCommand(runsCmd, showCmd, pruneCmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), store.ListRunsParams{Limit: limit})
	if err != nil {
		exitErr("list runs", err)
	}

	if isText() {
		p := printer()
		for _, r := range runs {
			p.Printf("%s  %s  %-10s %d pages  %s\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Archive, r.PageCount, r.Source)
		}
		return
	}
	printJSON(runs)
}

func runShow(cmd *cobra.Command, args []string) {
	paths, _ := cmd.Flags().GetBool("paths")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		exitErr("show", err)
	}

	if isText() {
		p := printer()
		p.Printf("run %s from %s at %s\n", run.ID, run.Source, run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		p.Printf("%d pages, %d posts per page, archive %s\n", run.PageCount, run.PostsPerPage, run.Archive)
		if paths {
			for _, d := range run.Pages {
				fmt.Printf("%-18s %s\n", d.Kind, d.Path)
			}
		}
		return
	}
	printJSON(run)
}

func runPrune(cmd *cobra.Command, args []string) {
	keep, _ := cmd.Flags().GetInt("keep")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.PruneRuns(cmd.Context(), keep)
	if err != nil {
		exitErr("prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"pruned":%d,"kept":%d}`+"\n", n, keep)
}
