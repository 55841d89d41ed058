package hm

import "context"

// Inferer is anything that can infer its own Type given a type environment
// and a source of fresh variables. pkg/lumen's AST nodes implement this.
type Inferer interface {
	Infer(ctx context.Context, env Env, fresh Fresher) (Type, error)
}
