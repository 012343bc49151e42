package rpc

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"seasonmarket/native/market"
)

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	inv, err := s.ledger.Inventory(addr)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inventoryView{
		Owner:        encodeAddress(addr),
		CrateIDs:     inv.CrateIDs,
		RaffleIDs:    inv.RaffleIDs,
		MerchTypeIDs: inv.MerchTypeIDs,
	})
}

func (s *Server) handleCrate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "crate id must be numeric")
		return
	}
	crate, ok, err := s.ledger.Crate(id)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "crate does not exist")
		return
	}
	writeJSON(w, http.StatusOK, crateToView(crate))
}

func (s *Server) handleCrateQuotas(w http.ResponseWriter, r *http.Request) {
	cfg, ok, err := s.ledger.SeasonConfig()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "season not initialized")
		return
	}
	day := cfg.DayIndex(s.engine.Timestamp())
	views := make([]quotaView, 0, 3)
	for _, tier := range []market.Tier{market.TierBronze, market.TierSilver, market.TierGold} {
		pool, err := s.ledger.CrateQuota(tier)
		if err != nil {
			s.writeEngineError(w, err)
			return
		}
		views = append(views, quotaView{
			Tier:           tier.String(),
			TotalCap:       cfg.CrateTotals[tier],
			DailyRate:      cfg.CrateDailyRates[tier],
			CumulativeSold: pool.CumulativeSold,
			AllowedToDate:  market.Allowance(cfg.CrateTotals[tier], cfg.CrateDailyRates[tier], day),
			SoldPerDay:     pool.SoldPerDay,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleMerchQuota(w http.ResponseWriter, r *http.Request) {
	typeID, err := strconv.ParseUint(chi.URLParam(r, "typeId"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "type id must be numeric")
		return
	}
	item, ok, err := s.ledger.MerchItem(uint32(typeID))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "merch item does not exist")
		return
	}
	writeJSON(w, http.StatusOK, merchQuotaView{
		TypeID:        item.TypeID,
		Name:          item.Name,
		Price:         item.Price,
		TotalSupply:   item.TotalSupply,
		TotalSold:     item.Quota.CumulativeSold,
		SoldPerWindow: item.Quota.SoldPerWindow,
		SoldPerDay:    item.Quota.SoldPerDay,
	})
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	cfg, ok, err := s.ledger.SeasonConfig()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "season not initialized")
		return
	}
	writeJSON(w, http.StatusOK, seasonToView(cfg))
}

type seasonView struct {
	Admin              string            `json:"admin"`
	Treasury           string            `json:"treasury"`
	StartTime          int64             `json:"startTime"`
	EndTime            int64             `json:"endTime"`
	UnlockTimes        map[string]int64  `json:"unlockTimes"`
	CrateTotals        map[string]uint64 `json:"crateTotals"`
	CrateDailyRates    map[string]uint64 `json:"crateDailyRates"`
	CrateUserDailyCaps map[string]uint32 `json:"crateUserDailyCaps"`
	RafflePrices       map[uint32]uint64 `json:"rafflePrices"`
	RaffleUserDailyCap uint32            `json:"raffleUserDailyCap"`
	MaxCratePayout     uint64            `json:"maxCratePayout"`
	CreditDecimals     uint8             `json:"creditDecimals"`
}

func seasonToView(cfg *market.SeasonConfig) seasonView {
	view := seasonView{
		Admin:              encodeAddress(cfg.Admin),
		Treasury:           encodeAddress(cfg.Treasury),
		StartTime:          cfg.StartTime,
		EndTime:            cfg.EndTime,
		UnlockTimes:        make(map[string]int64, len(cfg.UnlockTimes)),
		CrateTotals:        make(map[string]uint64, len(cfg.CrateTotals)),
		CrateDailyRates:    make(map[string]uint64, len(cfg.CrateDailyRates)),
		CrateUserDailyCaps: make(map[string]uint32, len(cfg.CrateUserDailyCaps)),
		RafflePrices:       make(map[uint32]uint64, len(cfg.RafflePrices)),
		RaffleUserDailyCap: cfg.RaffleUserDailyCap,
		MaxCratePayout:     cfg.MaxCratePayout,
		CreditDecimals:     cfg.CreditDecimals,
	}
	for slot, ts := range cfg.UnlockTimes {
		view.UnlockTimes[slot.String()] = ts
	}
	for tier, total := range cfg.CrateTotals {
		view.CrateTotals[tier.String()] = total
	}
	for tier, rate := range cfg.CrateDailyRates {
		view.CrateDailyRates[tier.String()] = rate
	}
	for tier, cap := range cfg.CrateUserDailyCaps {
		view.CrateUserDailyCaps[tier.String()] = cap
	}
	for typeID, price := range cfg.RafflePrices {
		view.RafflePrices[typeID] = price
	}
	return view
}

func (s *Server) handleWinners(w http.ResponseWriter, r *http.Request) {
	typeID, err := strconv.ParseUint(chi.URLParam(r, "typeId"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "type id must be numeric")
		return
	}
	winners, err := s.ledger.TypeWinners(uint32(typeID))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	views := make([]winnerView, 0, len(winners))
	for _, winner := range winners {
		views = append(views, winnerView{EntryID: winner.EntryID, Owner: encodeAddress(winner.Owner)})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	balance, err := s.ledger.Balance(addr)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceView{Address: encodeAddress(addr), Balance: balance.String()})
}
