package tools

import (
	"context"
	"log"
)

// ToolFunc defines a function executed asynchronously.
type ToolFunc func(ctx context.Context) error

// Dispatch runs the provided function in a separate goroutine.
// Fire-and-forget: failures are logged, never returned.
func Dispatch(ctx context.Context, name string, fn ToolFunc) {
	go func() {
		if err := fn(ctx); err != nil {
			log.Printf("[%s] %v", name, err)
		}
	}()
}
