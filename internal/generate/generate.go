// Package generate turns a content source into a validated page plan.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/pressplan/internal/model"
	"github.com/rcliao/pressplan/internal/pageplan"
	"github.com/rcliao/pressplan/internal/source"
)

// Generator plans every page for one run of a site build.
type Generator struct {
	Source source.Source
	Logger *slog.Logger
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Plan fetches content and builds the descriptors for posts, the post
// archive, static pages, tags and categories, in that order. The four
// branches run concurrently; the first error cancels the rest. Each call
// reads the source afresh.
func (g *Generator) Plan(ctx context.Context) (*pageplan.Plan, error) {
	log := g.logger()
	src := source.Session(g.Source)

	settings, err := timed(ctx, log, "settings", src.Settings)
	if err != nil {
		return nil, err
	}
	postsPerPage := settings.PostsPerPage
	if postsPerPage <= 0 {
		return nil, &pageplan.ConfigError{Field: "postsPerPage", Value: postsPerPage}
	}

	pages, err := timed(ctx, log, "pages", src.Pages)
	if err != nil {
		return nil, err
	}
	archive := pageplan.ResolveArchiveBase(pages)
	log.Debug("resolved archive", "mode", archive.Mode, "uri", archive.URI)

	var branches [4][]model.PageDescriptor
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		posts, err := timed(ctx, log, "posts", src.Posts)
		if err != nil {
			return err
		}
		out := pageplan.BuildPostPages(posts)
		if base, ok := archive.Path(); ok && len(posts) > 0 {
			archivePages, err := pageplan.BuildArchivePages(posts, postsPerPage, base)
			if err != nil {
				return err
			}
			out = append(out, archivePages...)
		}
		branches[0] = out
		return nil
	})

	eg.Go(func() error {
		branches[1] = pageplan.BuildStaticPages(pages)
		return nil
	})

	eg.Go(func() error {
		tags, err := timed(ctx, log, "tags", src.Tags)
		if err != nil {
			return err
		}
		branches[2], err = pageplan.BuildTagPages(tags, postsPerPage)
		return err
	})

	eg.Go(func() error {
		categories, err := timed(ctx, log, "categories", src.Categories)
		if err != nil {
			return err
		}
		branches[3], err = pageplan.BuildCategoryPages(categories, postsPerPage)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	plan := &pageplan.Plan{PostsPerPage: postsPerPage, Archive: archive.Mode.String()}
	for _, b := range branches {
		plan.Descriptors = append(plan.Descriptors, b...)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	counts := plan.CountByKind()
	log.Info("planned pages",
		"total", len(plan.Descriptors),
		"posts", counts[model.KindPost],
		"archive", counts[model.KindPostArchive],
		"pages", counts[model.KindPage],
		"tags", counts[model.KindTagArchive],
		"categories", counts[model.KindCategoryArchive],
	)
	return plan, nil
}

func timed[T any](ctx context.Context, log *slog.Logger, what string, fetch func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("fetch %s: %w", what, err)
	}
	log.Debug("fetched", "what", what, "elapsed", time.Since(start))
	return v, nil
}
