package queue

import "errors"

// Admission errors, caller-recoverable: a rejected push is a no-op, the
// client may retry with a fresh transaction. Matches spec.md §7's
// "Admission errors" family exactly.
var (
	ErrFull                      = errors.New("queue: full")
	ErrInFuture                  = errors.New("queue: creation time too far in the future")
	ErrExpired                   = errors.New("queue: transaction expired")
	ErrInBlockchain               = errors.New("queue: transaction already committed")
	ErrSignatoryInconsistent     = errors.New("queue: authority does not match signature public key")
	ErrIsInQueue                 = errors.New("queue: transaction already in queue")
	ErrMaximumTransactionsPerUser = errors.New("queue: authority exceeded per-user transaction limit")
)
