// Package storage is the per-customer key-value store that holds JSON
// documents (logged-in user, order history, cart).
package storage

import (
	"context"
	"encoding/json"
)

// KV stores raw JSON values under (owner, key).
type KV interface {
	// Get returns the stored value; ok is false when the key was never set.
	Get(ctx context.Context, owner, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, owner, key string, value []byte) error
	Delete(ctx context.Context, owner, key string) error
	// Append adds elem to the JSON array under key in one step. A missing
	// value, or one that is not a JSON array, is replaced by [elem].
	Append(ctx context.Context, owner, key string, elem []byte) error
}

// appendJSON is the array-append rule shared by the in-memory store.
func appendJSON(current []byte, elem []byte) ([]byte, error) {
	var arr []json.RawMessage
	if len(current) > 0 {
		if err := json.Unmarshal(current, &arr); err != nil {
			arr = nil
		}
	}
	arr = append(arr, json.RawMessage(elem))
	return json.Marshal(arr)
}
