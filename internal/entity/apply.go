package entity

import (
	"context"

	"github.com/vk/depweave/internal/ctxlog"
)

// Action is a caller-supplied operation applied to resolved prerequisites.
// Supports is the capability check: entities that do not support the action
// are skipped silently, not an error.
type Action interface {
	Supports(id string) bool
	Run(ctx context.Context, id string) error
}

// Apply resolves the prerequisite order for id and invokes act on each
// resolved entity that supports it, in order. The first Run failure aborts
// the walk.
func Apply(ctx context.Context, src Source, id string, act Action) error {
	logger := ctxlog.FromContext(ctx)

	order, err := Resolve(ctx, src, id)
	if err != nil {
		return err
	}

	for _, dep := range order {
		if !act.Supports(dep) {
			logger.Debug("Entity does not support the requested action, skipping.", "entity", dep)
			continue
		}
		if err := act.Run(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}
