// Package render is the boundary between a page plan and the things that
// consume it: output files and the preview server.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/rcliao/pressplan/internal/model"
	"github.com/rcliao/pressplan/internal/pageplan"
)

// Renderer consumes page descriptors one at a time. Close is called once
// after the last descriptor.
type Renderer interface {
	Render(ctx context.Context, d model.PageDescriptor) error
	Close() error
}

// Committer is implemented by renderers whose output only becomes visible
// on Commit. Emit commits every such renderer once all of them have closed
// cleanly, and discards them otherwise. If one commit fails, the ones
// already made are rolled back in reverse order; Release drops what
// Rollback would have restored once every commit has succeeded.
type Committer interface {
	Commit() error
	Rollback() error
	Release() error
	Discard() error
}

// Emit validates plan and hands each descriptor to every renderer in plan
// order. Nothing reaches a renderer if the plan has a null path or a path
// collision.
func Emit(ctx context.Context, plan *pageplan.Plan, renderers ...Renderer) (err error) {
	if err := plan.Validate(); err != nil {
		return err
	}

	defer func() {
		if err != nil {
			for _, r := range renderers {
				if c, ok := r.(Committer); ok {
					c.Discard()
				}
			}
		}
	}()

	for _, d := range plan.Descriptors {
		if err := ctx.Err(); err != nil {
			closeAll(renderers)
			return err
		}
		for _, r := range renderers {
			if err := r.Render(ctx, d); err != nil {
				closeAll(renderers)
				return fmt.Errorf("render %s: %w", d.Path, err)
			}
		}
	}

	if err := closeAll(renderers); err != nil {
		return fmt.Errorf("close: %w", err)
	}

	var committed []Committer
	for _, r := range renderers {
		c, ok := r.(Committer)
		if !ok {
			continue
		}
		if err := c.Commit(); err != nil {
			errs := []error{fmt.Errorf("commit: %w", err)}
			for i := len(committed) - 1; i >= 0; i-- {
				if rerr := committed[i].Rollback(); rerr != nil {
					errs = append(errs, fmt.Errorf("rollback: %w", rerr))
				}
			}
			return errors.Join(errs...)
		}
		committed = append(committed, c)
	}
	for _, c := range committed {
		c.Release()
	}
	return nil
}

func closeAll(renderers []Renderer) error {
	var errs []error
	for _, r := range renderers {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
