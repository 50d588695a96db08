package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/pressplan/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Plan pages and write the manifest and sitemap",
		Long: "Plan every page, then write pages.json and sitemap.xml to the output directory. " +
			"Files are replaced only if the whole run succeeds. The run is recorded in the ledger.",
		Run: runBuild,
	}

	addSourceFlags(cmd)
	cmd.Flags().StringP("out", "o", "", "Output directory (default: $PRESSPLAN_OUT_DIR or public)")
	cmd.Flags().String("site-url", "", "Absolute site URL for the sitemap (default: $PRESSPLAN_SITE_URL)")
	cmd.Flags().Bool("no-record", false, "Do not record the run")

	RootCmd.AddCommand(cmd)
}

func runBuild(cmd *cobra.Command, args []string) {
	outDir, _ := cmd.Flags().GetString("out")
	siteURL, _ := cmd.Flags().GetString("site-url")
	noRecord, _ := cmd.Flags().GetBool("no-record")
	if outDir == "" {
		outDir = cfg.OutDir
	}
	if siteURL == "" {
		siteURL = cfg.SiteURL
	}

	manifest := render.NewManifestRenderer(outDir)
	sitemap, err := render.NewSitemapRenderer(outDir, siteURL)
	if err != nil {
		exitErr("sitemap", err)
	}

	src, err := openSource(cmd)
	if err != nil {
		exitErr("open source", err)
	}
	defer src.close()

	ctx := cmd.Context()
	plan, err := buildPlan(ctx, src)
	if err != nil {
		exitErr("plan", err)
	}

	if err := render.Emit(ctx, plan, manifest, sitemap); err != nil {
		exitErr("build", err)
	}

	result := map[string]any{
		"ok":      true,
		"pages":   len(plan.Descriptors),
		"outputs": []string{manifest.Path(), sitemap.Path()},
	}
	if !noRecord {
		run, err := recordRun(ctx, src, plan)
		if err != nil {
			exitErr("record run", err)
		}
		result["run"] = run.ID
	}

	if isText() {
		p := printer()
		p.Printf("built %d pages into %s\n", len(plan.Descriptors), outDir)
		if id, ok := result["run"]; ok {
			p.Printf("run %s\n", id)
		}
		return
	}
	printJSON(result)
}
