package rng

import (
	"crypto/ecdsa"
	"errors"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"seasonmarket/core/types"
)

type memState struct {
	requests map[[32]byte]*Request
	nonce    uint64
	events   []types.Event
}

func newMemState() *memState {
	return &memState{requests: make(map[[32]byte]*Request)}
}

func (m *memState) RandomnessRequest(id [32]byte) (*Request, bool, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, false, nil
	}
	return req.Clone(), true, nil
}

func (m *memState) PutRandomnessRequest(req *Request) error {
	m.requests[req.ID] = req.Clone()
	return nil
}

func (m *memState) RandomnessNonce() (uint64, error) { return m.nonce, nil }

func (m *memState) SetRandomnessNonce(nonce uint64) error {
	m.nonce = nonce
	return nil
}

func (m *memState) AppendEvent(evt *types.Event) {
	if evt != nil {
		m.events = append(m.events, evt.Clone())
	}
}

type recordingSink struct {
	target Target
	values []uint64
	calls  int
	err    error
}

func (s *recordingSink) OnRandomness(target Target, values []uint64) error {
	s.calls++
	s.target = target
	s.values = append([]uint64(nil), values...)
	return s.err
}

func newTestGateway(t *testing.T) (*Gateway, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := ethcrypto.PubkeyToAddress(key.PublicKey)
	return NewGateway([20]byte(signer)), key
}

func signDelivery(t *testing.T, key *ecdsa.PrivateKey, req *Request) []byte {
	t.Helper()
	digest := DeliveryDigest(req.ID, req.Seed, req.Count, req.Requester)
	proof, err := ethcrypto.Sign(digest, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return proof
}

func TestRequestSmallCountSingleRequest(t *testing.T) {
	gw, _ := newTestGateway(t)
	st := newMemState()
	seed := Seed([]byte("crate"))

	ids, err := gw.Request(st, Target{Kind: TargetCrate, CrateID: 7}, 1, seed, 3, [20]byte{0x01})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("issued %d sub-requests, want 1", len(ids))
	}
	req, ok, err := st.RandomnessRequest(ids[0])
	if err != nil || !ok {
		t.Fatalf("pending request missing: ok=%v err=%v", ok, err)
	}
	if req.Count != 1 || req.Fulfilled {
		t.Fatalf("pending request state: count=%d fulfilled=%v", req.Count, req.Fulfilled)
	}
	if st.nonce != 1 {
		t.Fatalf("nonce = %d, want 1", st.nonce)
	}
}

func TestRequestLargeCountSplitsIntoFour(t *testing.T) {
	gw, _ := newTestGateway(t)
	st := newMemState()
	seed := Seed([]byte("draw"))

	ids, err := gw.Request(st, Target{Kind: TargetRaffleDraw, TypeID: 11, WinnerCount: 400}, 800, seed, 3, [20]byte{0x01})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(ids) != 4 {
		t.Fatalf("issued %d sub-requests, want 4", len(ids))
	}
	distinct := make(map[[32]byte]struct{})
	var total uint16
	for _, id := range ids {
		if _, dup := distinct[id]; dup {
			t.Fatalf("duplicate correlation id")
		}
		distinct[id] = struct{}{}
		req, ok, err := st.RandomnessRequest(id)
		if err != nil || !ok {
			t.Fatalf("pending request missing: ok=%v err=%v", ok, err)
		}
		if req.Count != 200 {
			t.Fatalf("sub-request count = %d, want 200", req.Count)
		}
		if req.Count > MaxValuesPerRequest {
			t.Fatalf("sub-request count %d exceeds ceiling", req.Count)
		}
		total += req.Count
	}
	if total != 800 {
		t.Fatalf("split total = %d, want 800", total)
	}
}

func TestRequestCountCeiling(t *testing.T) {
	gw, _ := newTestGateway(t)
	st := newMemState()
	if _, err := gw.Request(st, Target{Kind: TargetCrate}, 1021, Seed([]byte("x")), 3, [20]byte{}); !errors.Is(err, ErrCountTooLarge) {
		t.Fatalf("expected count too large, got %v", err)
	}
	if _, err := gw.Request(st, Target{Kind: TargetCrate}, 0, Seed([]byte("x")), 3, [20]byte{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request for zero count, got %v", err)
	}
}

func TestDeliverUnknownCorrelationRejectedBeforeVerification(t *testing.T) {
	gw, _ := newTestGateway(t)
	st := newMemState()
	sink := &recordingSink{}
	var unknown [32]byte
	unknown[0] = 0xFF

	err := gw.Deliver(st, sink, unknown, []uint64{1}, make([]byte, 65))
	if !errors.Is(err, ErrUnknownCorrelation) {
		t.Fatalf("expected unknown correlation, got %v", err)
	}
	if sink.calls != 0 {
		t.Fatalf("sink invoked for unknown correlation")
	}
}

func TestDeliverHappyPathDrivesSink(t *testing.T) {
	gw, key := newTestGateway(t)
	st := newMemState()
	sink := &recordingSink{}
	seed := Seed([]byte("crate"))

	ids, err := gw.Request(st, Target{Kind: TargetCrate, CrateID: 42}, 1, seed, 3, [20]byte{0x01})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req, _, _ := st.RandomnessRequest(ids[0])
	proof := signDelivery(t, key, req)

	if err := gw.Deliver(st, sink, ids[0], []uint64{99}, proof); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if sink.calls != 1 || sink.target.CrateID != 42 || len(sink.values) != 1 || sink.values[0] != 99 {
		t.Fatalf("sink saw calls=%d target=%+v values=%v", sink.calls, sink.target, sink.values)
	}
	stored, _, _ := st.RandomnessRequest(ids[0])
	if !stored.Fulfilled || len(stored.Values) != 1 {
		t.Fatalf("request not marked fulfilled: %+v", stored)
	}

	// Same correlation id rejects a second delivery.
	if err := gw.Deliver(st, sink, ids[0], []uint64{7}, proof); !errors.Is(err, ErrAlreadyFulfilled) {
		t.Fatalf("expected already fulfilled, got %v", err)
	}
	if sink.calls != 1 {
		t.Fatalf("sink invoked again on replay")
	}
}

func TestDeliverBadProofFailsClosed(t *testing.T) {
	gw, _ := newTestGateway(t)
	wrongKey, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	st := newMemState()
	sink := &recordingSink{}
	seed := Seed([]byte("crate"))

	ids, err := gw.Request(st, Target{Kind: TargetCrate, CrateID: 9}, 1, seed, 3, [20]byte{0x01})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req, _, _ := st.RandomnessRequest(ids[0])

	// Signed by a key that is not the registered oracle.
	badProof := signDelivery(t, wrongKey, req)
	if err := gw.Deliver(st, sink, ids[0], []uint64{5}, badProof); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected verification failed, got %v", err)
	}
	// Truncated proof.
	if err := gw.Deliver(st, sink, ids[0], []uint64{5}, badProof[:64]); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected verification failed for short proof, got %v", err)
	}
	if sink.calls != 0 {
		t.Fatalf("sink invoked despite failed verification")
	}
	stored, _, _ := st.RandomnessRequest(ids[0])
	if stored.Fulfilled {
		t.Fatalf("failed delivery marked the request fulfilled")
	}
}

func TestDeliverEmptyValuesRejected(t *testing.T) {
	gw, key := newTestGateway(t)
	st := newMemState()
	seed := Seed([]byte("crate"))

	ids, err := gw.Request(st, Target{Kind: TargetCrate, CrateID: 1}, 1, seed, 3, [20]byte{0x01})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req, _, _ := st.RandomnessRequest(ids[0])
	proof := signDelivery(t, key, req)

	if err := gw.Deliver(st, nil, ids[0], nil, proof); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request for empty values, got %v", err)
	}
	stored, _, _ := st.RandomnessRequest(ids[0])
	if stored.Fulfilled {
		t.Fatalf("empty delivery marked the request fulfilled")
	}
}

func TestSeedDeterministic(t *testing.T) {
	a := Seed([]byte("one"), []byte("two"))
	b := Seed([]byte("one"), []byte("two"))
	if a != b {
		t.Fatalf("identical parts produced different seeds")
	}
	c := Seed([]byte("one"), []byte("three"))
	if a == c {
		t.Fatalf("different parts produced the same seed")
	}
}
