package rpc

import (
	"encoding/hex"
	"fmt"
	"strings"

	"seasonmarket/native/market"
)

func parseAddress(value string) (market.Address, error) {
	var addr market.Address
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil || len(raw) != 20 {
		return addr, fmt.Errorf("invalid address %q", value)
	}
	copy(addr[:], raw)
	return addr, nil
}

func parseTier(name string) (market.Tier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bronze":
		return market.TierBronze, nil
	case "silver":
		return market.TierSilver, nil
	case "gold":
		return market.TierGold, nil
	}
	return 0, fmt.Errorf("unknown tier %q", name)
}

func parseSlot(name string) (market.Slot, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "m1":
		return market.SlotM1, nil
	case "m2":
		return market.SlotM2, nil
	case "m3":
		return market.SlotM3, nil
	}
	return 0, fmt.Errorf("unknown slot %q", name)
}

func encodeAddress(addr market.Address) string {
	return "0x" + hex.EncodeToString(addr[:])
}

type buyCratesRequest struct {
	Buyer    string `json:"buyer"`
	Tier     string `json:"tier"`
	Slot     string `json:"slot"`
	Quantity uint32 `json:"quantity"`
}

type buyRafflesRequest struct {
	Buyer    string `json:"buyer"`
	TypeID   uint32 `json:"typeId"`
	Quantity uint32 `json:"quantity"`
}

type buyMerchRequest struct {
	Buyer    string `json:"buyer"`
	TypeID   uint32 `json:"typeId"`
	Quantity uint32 `json:"quantity"`
}

type openCrateRequest struct {
	Caller  string `json:"caller"`
	CrateID uint64 `json:"crateId"`
}

type claimPrizeRequest struct {
	Caller  string `json:"caller"`
	CrateID uint64 `json:"crateId"`
}

type drawWinnersRequest struct {
	Caller      string `json:"caller"`
	TypeID      uint32 `json:"typeId"`
	WinnerCount uint32 `json:"winnerCount"`
}

type deliverRequest struct {
	CorrelationID string   `json:"correlationId"`
	Values        []uint64 `json:"values"`
	Proof         string   `json:"proof"`
}

type initSeasonRequest struct {
	// Season mirrors the config file's season block so operators can init
	// from the same shape they configure.
	Admin              string                       `json:"admin"`
	Treasury           string                       `json:"treasury"`
	StartTime          int64                        `json:"startTime"`
	EndTime            int64                        `json:"endTime"`
	UnlockTimes        map[string]int64             `json:"unlockTimes"`
	CratePrices        map[string]map[string]uint64 `json:"cratePrices"`
	CrateTotals        map[string]uint64            `json:"crateTotals"`
	CrateDailyRates    map[string]uint64            `json:"crateDailyRates"`
	CrateUserDailyCaps map[string]uint32            `json:"crateUserDailyCaps"`
	RafflePrices       map[uint32]uint64            `json:"rafflePrices"`
	RaffleUserDailyCap uint32                       `json:"raffleUserDailyCap"`
	MaxCratePayout     uint64                       `json:"maxCratePayout"`
	CreditDecimals     uint8                        `json:"creditDecimals"`
}

type setWindowRequest struct {
	Caller    string `json:"caller"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

type setUnlockRequest struct {
	Caller     string `json:"caller"`
	Slot       string `json:"slot"`
	UnlockTime int64  `json:"unlockTime"`
}

type setCratePriceRequest struct {
	Caller string `json:"caller"`
	Tier   string `json:"tier"`
	Slot   string `json:"slot"`
	Price  uint64 `json:"price"`
}

type setCrateQuotaRequest struct {
	Caller       string `json:"caller"`
	Tier         string `json:"tier"`
	Total        uint64 `json:"total"`
	DailyRate    uint64 `json:"dailyRate"`
	UserDailyCap uint32 `json:"userDailyCap"`
}

type setRafflePriceRequest struct {
	Caller string `json:"caller"`
	TypeID uint32 `json:"typeId"`
	Price  uint64 `json:"price"`
}

type setRaffleCapRequest struct {
	Caller string `json:"caller"`
	Cap    uint32 `json:"cap"`
}

type setMaxPayoutRequest struct {
	Caller string `json:"caller"`
	Cap    uint64 `json:"cap"`
}

type registerMerchRequest struct {
	Caller      string `json:"caller"`
	TypeID      uint32 `json:"typeId"`
	Name        string `json:"name"`
	Price       uint64 `json:"price"`
	TotalSupply uint64 `json:"totalSupply"`
}

type registerParticipantRequest struct {
	Address string `json:"address"`
}

type creditParticipantRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

type purchaseResponse struct {
	IDs []uint64 `json:"ids"`
}

type openCrateResponse struct {
	CorrelationID string `json:"correlationId"`
}

type claimPrizeResponse struct {
	Prize uint64 `json:"prize"`
}

type drawWinnersResponse struct {
	CorrelationIDs []string `json:"correlationIds"`
}

type crateView struct {
	ID          uint64 `json:"id"`
	Owner       string `json:"owner"`
	Tier        string `json:"tier"`
	Slot        string `json:"slot"`
	UnlockTime  int64  `json:"unlockTime"`
	Price       uint64 `json:"price"`
	PurchasedAt int64  `json:"purchasedAt"`
	Opened      bool   `json:"opened"`
	OpenedAt    int64  `json:"openedAt,omitempty"`
	Prize       uint64 `json:"prize,omitempty"`
	Claimed     bool   `json:"claimed"`
	Pending     bool   `json:"pending"`
}

func crateToView(c *market.Crate) crateView {
	return crateView{
		ID:          c.ID,
		Owner:       encodeAddress(c.Owner),
		Tier:        c.Tier.String(),
		Slot:        c.Slot.String(),
		UnlockTime:  c.UnlockTime,
		Price:       c.Price,
		PurchasedAt: c.PurchasedAt,
		Opened:      c.Opened,
		OpenedAt:    c.OpenedAt,
		Prize:       c.Prize,
		Claimed:     c.Claimed,
		Pending:     !c.Opened && len(c.RequestID) > 0,
	}
}

type inventoryView struct {
	Owner        string   `json:"owner"`
	CrateIDs     []uint64 `json:"crateIds"`
	RaffleIDs    []uint64 `json:"raffleIds"`
	MerchTypeIDs []uint32 `json:"merchTypeIds"`
}

type quotaView struct {
	Tier           string            `json:"tier"`
	TotalCap       uint64            `json:"totalCap"`
	DailyRate      uint64            `json:"dailyRate"`
	CumulativeSold uint64            `json:"cumulativeSold"`
	AllowedToDate  uint64            `json:"allowedToDate"`
	SoldPerDay     map[uint64]uint64 `json:"soldPerDay,omitempty"`
}

type merchQuotaView struct {
	TypeID        uint32            `json:"typeId"`
	Name          string            `json:"name"`
	Price         uint64            `json:"price"`
	TotalSupply   uint64            `json:"totalSupply"`
	TotalSold     uint64            `json:"totalSold"`
	SoldPerWindow map[uint64]uint64 `json:"soldPerWindow,omitempty"`
	SoldPerDay    map[uint64]uint64 `json:"soldPerDay,omitempty"`
}

type winnerView struct {
	EntryID uint64 `json:"entryId"`
	Owner   string `json:"owner"`
}

type balanceView struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}
