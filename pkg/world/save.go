package world

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/scriptevent/pkg/entity"
	"github.com/jwebster45206/scriptevent/pkg/storage"
)

const templateScopePrefix = "template:"

// TemplateScope is the save scope holding a template's shared locals.
func TemplateScope(name string) string {
	return templateScopePrefix + strings.ToLower(name)
}

// Snapshot writes the global variables, each template's shared locals and
// the locals of every entity with its own script to st under saveID.
func (w *World) Snapshot(ctx context.Context, st storage.Storage, saveID uuid.UUID) error {
	if err := st.SaveVars(ctx, saveID, storage.GlobalScope, w.Globals.Vars()); err != nil {
		return fmt.Errorf("failed to save globals: %w", err)
	}

	for _, master := range w.templates {
		if master.Locals().Len() == 0 {
			continue
		}
		if err := st.SaveVars(ctx, saveID, TemplateScope(master.Name), master.Locals().Vars()); err != nil {
			return fmt.Errorf("failed to save locals of template %s: %w", master.Name, err)
		}
	}

	var err error
	w.arena.Each(func(h entity.Handle, ent *entity.Entity) bool {
		s, ok := w.scripts[h]
		if !ok || s.Master() != nil || s.Locals().Len() == 0 {
			return true
		}
		if saveErr := st.SaveVars(ctx, saveID, ent.Name, s.Locals().Vars()); saveErr != nil {
			err = fmt.Errorf("failed to save locals of %s: %w", ent.Name, saveErr)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	w.logger.Info("World saved", "world_id", w.ID.String(), "save_id", saveID.String())
	return nil
}

// Restore replaces the world's variables with the ones saved under saveID.
// Stores of entities missing from the save are cleared; scopes naming
// entities that no longer exist are ignored.
func (w *World) Restore(ctx context.Context, st storage.Storage, saveID uuid.UUID) error {
	scopes, err := st.ListScopes(ctx, saveID)
	if err != nil {
		return fmt.Errorf("failed to list save scopes: %w", err)
	}
	if len(scopes) == 0 {
		return fmt.Errorf("save not found: %s", saveID)
	}

	w.clearVars()

	for _, scope := range scopes {
		vars, err := st.LoadVars(ctx, saveID, scope)
		if err != nil {
			return fmt.Errorf("failed to load scope %s: %w", scope, err)
		}

		if scope == storage.GlobalScope {
			if err := w.Globals.Load(vars); err != nil {
				return fmt.Errorf("failed to restore globals: %w", err)
			}
			continue
		}

		if name, ok := strings.CutPrefix(scope, templateScopePrefix); ok {
			master, ok := w.Template(name)
			if !ok {
				w.logger.Warn("Saved scope has no template", "scope", scope, "save_id", saveID.String())
				continue
			}
			if err := master.Locals().Load(vars); err != nil {
				return fmt.Errorf("failed to restore locals of template %s: %w", name, err)
			}
			continue
		}

		ent, ok := w.lookup(scope)
		if !ok {
			w.logger.Warn("Saved scope has no entity", "scope", scope, "save_id", saveID.String())
			continue
		}
		if err := w.scripts[ent.Handle()].Locals().Load(vars); err != nil {
			return fmt.Errorf("failed to restore locals of %s: %w", scope, err)
		}
	}

	w.logger.Info("World restored", "world_id", w.ID.String(), "save_id", saveID.String(), "scopes", len(scopes))
	return nil
}
