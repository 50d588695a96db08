package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/pressplan/internal/generate"
	"github.com/rcliao/pressplan/internal/model"
	"github.com/rcliao/pressplan/internal/pageplan"
	"github.com/rcliao/pressplan/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the page plan",
		Long:  "Plan every page from the content source and print the descriptors. Nothing is written.",
		Run:   runPlan,
	}

	addSourceFlags(cmd)
	cmd.Flags().Bool("record", false, "Record the plan in the run ledger")
	cmd.Flags().Bool("paths", false, "With --format text, list every path")

	RootCmd.AddCommand(cmd)
}

func runPlan(cmd *cobra.Command, args []string) {
	record, _ := cmd.Flags().GetBool("record")
	paths, _ := cmd.Flags().GetBool("paths")

	src, err := openSource(cmd)
	if err != nil {
		exitErr("open source", err)
	}
	defer src.close()

	plan, err := buildPlan(cmd.Context(), src)
	if err != nil {
		exitErr("plan", err)
	}

	if record {
		run, err := recordRun(cmd.Context(), src, plan)
		if err != nil {
			exitErr("record run", err)
		}
		logger.Info("recorded run", "id", run.ID)
	}

	if isText() {
		printPlanSummary(plan, paths)
		return
	}
	printJSON(plan)
}

func buildPlan(ctx context.Context, src *contentSource) (*pageplan.Plan, error) {
	g := &generate.Generator{Source: src, Logger: logger}
	return g.Plan(ctx)
}

// recordRun appends plan to the ledger, reusing the source's store when it
// is one.
func recordRun(ctx context.Context, src *contentSource, plan *pageplan.Plan) (*model.Run, error) {
	s, ok := src.Source.(*store.SQLiteStore)
	if !ok {
		var err error
		if s, err = openStore(); err != nil {
			return nil, err
		}
		defer s.Close()
	}
	return s.RecordRun(ctx, store.RunParams{
		Source:       src.origin,
		Archive:      plan.Archive,
		PostsPerPage: plan.PostsPerPage,
		Pages:        plan.Descriptors,
	})
}

var kindOrder = []model.TemplateKind{
	model.KindPost,
	model.KindPostArchive,
	model.KindPage,
	model.KindTagArchive,
	model.KindCategoryArchive,
}

func printPlanSummary(plan *pageplan.Plan, paths bool) {
	p := printer()
	p.Printf("%d pages, %d posts per page, archive %s\n", len(plan.Descriptors), plan.PostsPerPage, plan.Archive)
	counts := plan.CountByKind()
	for _, k := range kindOrder {
		p.Printf("  %-18s %d\n", k, counts[k])
	}
	if !paths {
		return
	}
	for _, d := range plan.Descriptors {
		fmt.Printf("%-18s %s\n", d.Kind, d.Path)
	}
}
