package secop

import "context"

// Strategy defines a configurable investigation loop.
type Strategy interface {
	Name() string
	Run(ctx context.Context, subject Subject) (Report, error)
}

// StrategyFactory creates a strategy using the Investigator's configured
// dependencies.
type StrategyFactory func(inv *Investigator) (Strategy, error)
