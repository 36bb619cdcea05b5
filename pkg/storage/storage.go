package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/scriptevent/pkg/script"
)

// GlobalScope is the save scope holding the world's global variables.
// Every other scope is named after the entity whose locals it holds.
const GlobalScope = "global"

// Storage persists variable snapshots. A save is a set of scopes, each
// holding the bindings of one variable store.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveVars replaces the bindings stored for scope in the save.
	SaveVars(ctx context.Context, saveID uuid.UUID, scope string, vars []script.Var) error
	// LoadVars returns nil, nil when the save or scope does not exist.
	LoadVars(ctx context.Context, saveID uuid.UUID, scope string) ([]script.Var, error)
	DeleteSave(ctx context.Context, saveID uuid.UUID) error
	ListScopes(ctx context.Context, saveID uuid.UUID) ([]string, error)
}
