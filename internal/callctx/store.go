// Package callctx holds the ephemeral per-call conversation state shared by
// all webhook invocations of one call. The store is volatile by contract: a
// miss is a normal outcome (late webhook, duplicate delivery, process
// restart) and booking outcomes must be durably persisted elsewhere before
// the context is discarded.
package callctx

import (
	"context"

	"github.com/garasindo/voice-crm-service/internal/domain"
)

// Store maps a provider call SID to its conversation context.
type Store interface {
	// Put inserts or replaces the context for a call. Last write wins.
	Put(ctx context.Context, callSID string, callContext *domain.CallContext) error

	// Get looks up the context for a call. ok is false on a miss; a miss is
	// not an error.
	Get(ctx context.Context, callSID string) (callContext *domain.CallContext, ok bool, err error)

	// Remove deletes the context for a call. Removing an absent key is a
	// no-op.
	Remove(ctx context.Context, callSID string) error
}
