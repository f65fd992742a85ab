package artifact

import (
	"context"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
)

// Generator produces the body text of an artifact
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Archive stores a copy of generated content and returns its key
type Archive interface {
	Put(ctx context.Context, a *Artifact) (string, error)
}

// Service defines artifact operations. Generate runs the gatekeeper.
type Service interface {
	Generate(ctx context.Context, caller access.Caller, req Request) (*Artifact, error)
	Get(ctx context.Context, caller access.Caller, id string) (*Artifact, error)
	ListMine(ctx context.Context, caller access.Caller, kind Kind, limit, offset int) ([]*Artifact, int64, error)
	ListAll(ctx context.Context, kind Kind, limit, offset int) ([]*Artifact, int64, error)
}
