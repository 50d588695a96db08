package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/pressplan/internal/pageplan"
	"github.com/rcliao/pressplan/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page plan for previewing",
		Long: "Serve the plan over HTTP: GET any path for the page planned there, GET /_plan for all of them, " +
			"GET /_sitemap.xml for the sitemap and POST /_reload to plan again from the source.",
		Run: runServe,
	}

	addSourceFlags(cmd)
	cmd.Flags().String("addr", ":8000", "Listen address")
	cmd.Flags().String("site-url", "", "Absolute site URL for the sitemap (default: $PRESSPLAN_SITE_URL)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	siteURL, _ := cmd.Flags().GetString("site-url")
	if siteURL == "" {
		siteURL = cfg.SiteURL
	}

	src, err := openSource(cmd)
	if err != nil {
		exitErr("open source", err)
	}
	defer src.close()

	reload := func(ctx context.Context) (*pageplan.Plan, error) {
		return buildPlan(ctx, src)
	}
	srv, err := render.NewPreviewServer(siteURL, render.WithReload(reload), render.WithPreviewLogger(logger))
	if err != nil {
		exitErr("preview server", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plan, err := reload(ctx)
	if err != nil {
		exitErr("plan", err)
	}
	if err := srv.Publish(ctx, plan); err != nil {
		exitErr("publish", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving plan", "addr", addr, "pages", len(plan.Descriptors))
	if err := srv.Start(addr); err != nil {
		exitErr("serve", err)
	}
}
