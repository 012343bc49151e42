package rpc

import (
	"encoding/hex"
	"net/http"
	"strconv"

	"seasonmarket/native/rng"
)

// handleDeliver accepts the oracle's randomness callback. Verification and the
// resulting target mutation run inside one serialized transaction; any failure
// is fail-closed and the pending request stays answerable.
func (s *Server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	if !s.deliverLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate_limited", "delivery rate exceeded")
		return
	}
	var req deliverRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rawID, err := hex.DecodeString(req.CorrelationID)
	if err != nil || len(rawID) != 32 {
		writeError(w, http.StatusBadRequest, "invalid_argument", "correlationId must be 32 hex-encoded bytes")
		return
	}
	var id [32]byte
	copy(id[:], rawID)
	proof, err := hex.DecodeString(req.Proof)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "proof must be hex encoded")
		return
	}

	s.mu.Lock()
	before := s.winnersBefore(id)
	err = s.gateway.Deliver(s.ledger, s.engine.RandomnessSink(s.ledger), id, req.Values, proof)
	if err == nil {
		s.observeFulfilled(id, before)
	}
	s.mu.Unlock()
	if err != nil {
		s.metrics.ObserveRNGRejected()
		s.writeEngineError(w, err)
		return
	}
	s.metrics.ObserveRNGFulfilled()
	writeJSON(w, http.StatusOK, map[string]bool{"fulfilled": true})
}

// winnersBefore snapshots the winner count for a pending draw request so the
// delivery's contribution can be observed as a delta. Called with the server
// lock held.
func (s *Server) winnersBefore(id [32]byte) int {
	req, ok, err := s.ledger.RandomnessRequest(id)
	if err != nil || !ok || req.Target.Kind != rng.TargetRaffleDraw {
		return 0
	}
	winners, err := s.ledger.TypeWinners(req.Target.TypeID)
	if err != nil {
		return 0
	}
	return len(winners)
}

// observeFulfilled records target-level counters after a successful delivery.
// Called with the server lock held.
func (s *Server) observeFulfilled(id [32]byte, winnersBefore int) {
	req, ok, err := s.ledger.RandomnessRequest(id)
	if err != nil || !ok {
		return
	}
	switch req.Target.Kind {
	case rng.TargetCrate:
		if crate, ok, err := s.ledger.Crate(req.Target.CrateID); err == nil && ok {
			s.metrics.ObservePrizeResolved(crate.Tier.String())
		}
	case rng.TargetRaffleDraw:
		if winners, err := s.ledger.TypeWinners(req.Target.TypeID); err == nil {
			typeLabel := strconv.FormatUint(uint64(req.Target.TypeID), 10)
			s.metrics.ObserveWinners(typeLabel, len(winners)-winnersBefore)
		}
	}
}
