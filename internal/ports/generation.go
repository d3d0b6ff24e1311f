package ports

import "context"

// GenerationClient calls an external text-generation provider once, without retries.
type GenerationClient interface {
	Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
	Model() string
}

// GenerationLock serializes generation for one cache key across processes.
// Release must be called once the guarded work has finished.
type GenerationLock interface {
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}
