package rng

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"seasonmarket/core/types"
)

const (
	eventRequested = "rng.requested"
	eventFulfilled = "rng.fulfilled"
	eventRejected  = "rng.rejected"
)

// Gateway issues randomness requests and validates oracle callbacks. It holds
// no pending state itself; the pending table lives in the ledger so that
// request and delivery apply as ordinary serialized transactions.
type Gateway struct {
	signer [20]byte
	now    func() time.Time
}

// NewGateway constructs a gateway that accepts deliveries signed by the
// supplied oracle address.
func NewGateway(signer [20]byte) *Gateway {
	return &Gateway{signer: signer}
}

// SetSigner replaces the accepted oracle signer address.
func (g *Gateway) SetSigner(signer [20]byte) {
	if g == nil {
		return
	}
	g.signer = signer
}

// SetClock overrides the gateway clock, primarily for deterministic testing.
func (g *Gateway) SetClock(now func() time.Time) {
	if g == nil {
		return
	}
	g.now = now
}

func (g *Gateway) timestamp() int64 {
	if g != nil && g.now != nil {
		return g.now().Unix()
	}
	return time.Now().Unix()
}

// Request records intent for count random values against the target and
// returns the correlation ids the oracle will answer. Counts above the
// per-request ceiling are split into exactly four equal sub-requests issued
// together. The call never blocks and never contacts the oracle directly.
func (g *Gateway) Request(st State, target Target, count uint16, seed [32]byte, confirmations uint16, requester [20]byte) ([][32]byte, error) {
	if g == nil || st == nil {
		return nil, ErrInvalidRequest
	}
	if count == 0 {
		return nil, ErrInvalidRequest
	}
	counts := []uint16{count}
	if count > MaxValuesPerRequest {
		if count > maxSplitCount {
			return nil, ErrCountTooLarge
		}
		per := (count + splitFactor - 1) / splitFactor
		counts = []uint16{per, per, per, per}
	}

	createdAt := g.timestamp()
	ids := make([][32]byte, 0, len(counts))
	for _, c := range counts {
		nonce, err := st.RandomnessNonce()
		if err != nil {
			return nil, err
		}
		id := correlationID(seed, c, nonce)
		if err := st.SetRandomnessNonce(nonce + 1); err != nil {
			return nil, err
		}
		req := &Request{
			ID:            id,
			Target:        target,
			Seed:          seed,
			Count:         c,
			Confirmations: confirmations,
			Requester:     requester,
			CreatedAt:     createdAt,
		}
		if err := st.PutRandomnessRequest(req); err != nil {
			return nil, err
		}
		st.AppendEvent(&types.Event{Type: eventRequested, Attributes: map[string]string{
			"correlationId": hex.EncodeToString(id[:]),
			"count":         strconv.FormatUint(uint64(c), 10),
			"confirmations": strconv.FormatUint(uint64(confirmations), 10),
			"requester":     hex.EncodeToString(requester[:]),
		}})
		ids = append(ids, id)
	}
	return ids, nil
}

// Deliver validates an oracle callback and, on success, stores the values
// against the correlation id and drives the target mutation through the sink
// in the same transaction. Verification failures are fail-closed: the payload
// is discarded and the pending record is left untouched. A correlation id that
// has already been fulfilled rejects a second delivery.
func (g *Gateway) Deliver(st State, sink Sink, id [32]byte, values []uint64, proof []byte) error {
	if g == nil || st == nil {
		return ErrInvalidRequest
	}
	req, ok, err := st.RandomnessRequest(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownCorrelation
	}
	if req.Fulfilled {
		return ErrAlreadyFulfilled
	}
	if err := g.verifyProof(req, proof); err != nil {
		st.AppendEvent(&types.Event{Type: eventRejected, Attributes: map[string]string{
			"correlationId": hex.EncodeToString(id[:]),
			"reason":        "verification_failed",
		}})
		return err
	}
	if len(values) == 0 {
		return ErrInvalidRequest
	}

	req.Fulfilled = true
	req.FulfilledAt = g.timestamp()
	req.Values = append([]uint64(nil), values...)
	if err := st.PutRandomnessRequest(req); err != nil {
		return err
	}
	if sink != nil {
		if err := sink.OnRandomness(req.Target, req.Values); err != nil {
			return err
		}
	}
	st.AppendEvent(&types.Event{Type: eventFulfilled, Attributes: map[string]string{
		"correlationId": hex.EncodeToString(id[:]),
		"values":        strconv.Itoa(len(values)),
	}})
	return nil
}

// verifyProof checks the oracle signature over the canonical delivery message
// (correlation id, seed, count, requester) against the registered signer.
func (g *Gateway) verifyProof(req *Request, proof []byte) error {
	if len(proof) != 65 {
		return ErrVerificationFailed
	}
	digest := deliveryDigest(req.ID, req.Seed, req.Count, req.Requester)
	pubKey, err := ethcrypto.SigToPub(digest, proof)
	if err != nil {
		return ErrVerificationFailed
	}
	recovered := ethcrypto.PubkeyToAddress(*pubKey)
	if [20]byte(recovered) != g.signer {
		return ErrVerificationFailed
	}
	return nil
}

const deliveryDomain = "SEASONMARKET_RNG_V1"

// DeliveryDigest renders the canonical digest an oracle must sign for a
// delivery. Exported so callback tooling and tests can produce valid proofs.
func DeliveryDigest(id, seed [32]byte, count uint16, requester [20]byte) []byte {
	return deliveryDigest(id, seed, count, requester)
}

func deliveryDigest(id, seed [32]byte, count uint16, requester [20]byte) []byte {
	msg := make([]byte, 0, len(deliveryDomain)+32+32+2+20)
	msg = append(msg, deliveryDomain...)
	msg = append(msg, id[:]...)
	msg = append(msg, seed[:]...)
	msg = binary.BigEndian.AppendUint16(msg, count)
	msg = append(msg, requester[:]...)
	return ethcrypto.Keccak256(msg)
}

// Seed derives a request seed by hashing the supplied parts under the
// delivery domain separator.
func Seed(parts ...[]byte) [32]byte {
	msg := []byte(deliveryDomain)
	for _, p := range parts {
		msg = append(msg, p...)
	}
	var seed [32]byte
	copy(seed[:], ethcrypto.Keccak256(msg))
	return seed
}

func correlationID(seed [32]byte, count uint16, nonce uint64) [32]byte {
	msg := make([]byte, 0, len(deliveryDomain)+32+2+8)
	msg = append(msg, deliveryDomain...)
	msg = append(msg, seed[:]...)
	msg = binary.BigEndian.AppendUint16(msg, count)
	msg = binary.BigEndian.AppendUint64(msg, nonce)
	var id [32]byte
	copy(id[:], ethcrypto.Keccak256(msg))
	return id
}
