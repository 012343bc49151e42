// Package rng implements the asynchronous request/callback protocol used to
// obtain verifiable random values from an external oracle. Requests record
// intent and return immediately; values arrive later through Deliver with an
// unbounded, unordered delay. A request that is never fulfilled is a valid
// terminal state.
package rng

import (
	"errors"

	"seasonmarket/core/types"
)

var (
	ErrUnknownCorrelation = errors.New("rng: unknown correlation id")
	ErrAlreadyFulfilled   = errors.New("rng: correlation id already fulfilled")
	ErrVerificationFailed = errors.New("rng: proof verification failed")
	ErrInvalidRequest     = errors.New("rng: invalid request")
	ErrCountTooLarge      = errors.New("rng: requested count exceeds split capacity")
)

// Per-request ceiling imposed by the oracle protocol; larger requests are
// split into exactly four equal sub-requests.
const (
	MaxValuesPerRequest = 255
	splitFactor         = 4
	maxSplitCount       = MaxValuesPerRequest * splitFactor
)

// TargetKind discriminates what a fulfilled request mutates.
type TargetKind uint8

const (
	TargetCrate TargetKind = iota + 1
	TargetRaffleDraw
)

// Target links a correlation id back to the record its random values resolve.
type Target struct {
	Kind        TargetKind `json:"kind"`
	CrateID     uint64     `json:"crateId,omitempty"`
	TypeID      uint32     `json:"typeId,omitempty"`
	WinnerCount uint32     `json:"winnerCount,omitempty"`
}

// Request is the pending-table record for one oracle sub-request. Values and
// FulfilledAt are written exactly once by a verified Deliver call.
type Request struct {
	ID            [32]byte `json:"id"`
	Target        Target   `json:"target"`
	Seed          [32]byte `json:"seed"`
	Count         uint16   `json:"count"`
	Confirmations uint16   `json:"confirmations"`
	Requester     [20]byte `json:"requester"`
	CreatedAt     int64    `json:"createdAt"`
	Fulfilled     bool     `json:"fulfilled"`
	FulfilledAt   int64    `json:"fulfilledAt,omitempty"`
	Values        []uint64 `json:"values,omitempty"`
}

// Clone returns a deep copy of the request record.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	clone := *r
	if len(r.Values) > 0 {
		clone.Values = append([]uint64(nil), r.Values...)
	}
	return &clone
}

// State describes the persistence the gateway needs from the surrounding
// ledger implementation.
type State interface {
	RandomnessRequest(id [32]byte) (*Request, bool, error)
	PutRandomnessRequest(req *Request) error
	RandomnessNonce() (uint64, error)
	SetRandomnessNonce(nonce uint64) error
	AppendEvent(evt *types.Event)
}

// Sink receives the verified random values for a fulfilled request and applies
// the target mutation in the same transaction as the delivery.
type Sink interface {
	OnRandomness(target Target, values []uint64) error
}
