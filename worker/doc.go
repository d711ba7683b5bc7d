// Package worker provides a goroutine pool for resolving search terms
// in parallel. Each job carries its input-order index so a batch can
// be reassembled deterministically regardless of completion order.
package worker
