package rpc

import (
	"encoding/hex"
	"math/big"
	"net/http"

	"seasonmarket/native/market"
)

func (s *Server) handleBuyCrates(w http.ResponseWriter, r *http.Request) {
	var req buyCratesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	buyer, err := parseAddress(req.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	tier, err := parseTier(req.Tier)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	slot, err := parseSlot(req.Slot)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	ids, err := s.engine.BuyCrates(s.ledger, buyer, tier, slot, req.Quantity, s.engine.Timestamp())
	s.mu.Unlock()
	if err != nil {
		code, _ := classifyError(err)
		s.metrics.ObservePurchaseDenied(code)
		s.writeEngineError(w, err)
		return
	}
	s.metrics.ObservePurchase("crate")
	writeJSON(w, http.StatusOK, purchaseResponse{IDs: ids})
}

func (s *Server) handleBuyRaffleEntries(w http.ResponseWriter, r *http.Request) {
	var req buyRafflesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	buyer, err := parseAddress(req.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	ids, err := s.engine.BuyRaffleEntries(s.ledger, buyer, req.TypeID, req.Quantity, s.engine.Timestamp())
	s.mu.Unlock()
	if err != nil {
		code, _ := classifyError(err)
		s.metrics.ObservePurchaseDenied(code)
		s.writeEngineError(w, err)
		return
	}
	s.metrics.ObservePurchase("raffle")
	writeJSON(w, http.StatusOK, purchaseResponse{IDs: ids})
}

func (s *Server) handleBuyMerch(w http.ResponseWriter, r *http.Request) {
	var req buyMerchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	buyer, err := parseAddress(req.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.engine.BuyMerch(s.ledger, buyer, req.TypeID, req.Quantity, s.engine.Timestamp())
	s.mu.Unlock()
	if err != nil {
		code, _ := classifyError(err)
		s.metrics.ObservePurchaseDenied(code)
		s.writeEngineError(w, err)
		return
	}
	s.metrics.ObservePurchase("merch")
	writeJSON(w, http.StatusOK, map[string]bool{"purchased": true})
}

func (s *Server) handleOpenCrate(w http.ResponseWriter, r *http.Request) {
	var req openCrateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	id, err := s.engine.OpenCrate(s.ledger, caller, req.CrateID, s.engine.Timestamp())
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.metrics.ObserveRNGRequests(1)
	writeJSON(w, http.StatusOK, openCrateResponse{CorrelationID: hex.EncodeToString(id[:])})
}

func (s *Server) handleClaimPrize(w http.ResponseWriter, r *http.Request) {
	var req claimPrizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	prize, err := s.engine.ClaimPrize(s.ledger, caller, req.CrateID)
	var tier string
	if err == nil {
		if crate, ok, crateErr := s.ledger.Crate(req.CrateID); crateErr == nil && ok {
			tier = crate.Tier.String()
		}
	}
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.metrics.ObservePrizeClaimed(tier)
	writeJSON(w, http.StatusOK, claimPrizeResponse{Prize: prize})
}

func (s *Server) handleDrawWinners(w http.ResponseWriter, r *http.Request) {
	var req drawWinnersRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	ids, err := s.engine.DrawRaffleWinners(s.ledger, caller, req.TypeID, req.WinnerCount, s.engine.Timestamp())
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.metrics.ObserveRNGRequests(len(ids))
	encoded := make([]string, 0, len(ids))
	for _, id := range ids {
		encoded = append(encoded, hex.EncodeToString(id[:]))
	}
	writeJSON(w, http.StatusOK, drawWinnersResponse{CorrelationIDs: encoded})
}

func (s *Server) handleInitSeason(w http.ResponseWriter, r *http.Request) {
	var req initSeasonRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg, err := seasonFromRequest(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.engine.InitSeason(s.ledger, cfg)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"initialized": true})
}

func seasonFromRequest(req *initSeasonRequest) (*market.SeasonConfig, error) {
	admin, err := parseAddress(req.Admin)
	if err != nil {
		return nil, err
	}
	treasury, err := parseAddress(req.Treasury)
	if err != nil {
		return nil, err
	}
	cfg := (&market.SeasonConfig{
		Admin:              admin,
		Treasury:           treasury,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		RaffleUserDailyCap: req.RaffleUserDailyCap,
		MaxCratePayout:     req.MaxCratePayout,
		CreditDecimals:     req.CreditDecimals,
	}).Normalize()
	for name, ts := range req.UnlockTimes {
		slot, err := parseSlot(name)
		if err != nil {
			return nil, err
		}
		cfg.UnlockTimes[slot] = ts
	}
	for tierName, slots := range req.CratePrices {
		tier, err := parseTier(tierName)
		if err != nil {
			return nil, err
		}
		inner := make(map[market.Slot]uint64, len(slots))
		for slotName, price := range slots {
			slot, err := parseSlot(slotName)
			if err != nil {
				return nil, err
			}
			inner[slot] = price
		}
		cfg.CratePrices[tier] = inner
	}
	for tierName, total := range req.CrateTotals {
		tier, err := parseTier(tierName)
		if err != nil {
			return nil, err
		}
		cfg.CrateTotals[tier] = total
	}
	for tierName, rate := range req.CrateDailyRates {
		tier, err := parseTier(tierName)
		if err != nil {
			return nil, err
		}
		cfg.CrateDailyRates[tier] = rate
	}
	for tierName, cap := range req.CrateUserDailyCaps {
		tier, err := parseTier(tierName)
		if err != nil {
			return nil, err
		}
		cfg.CrateUserDailyCaps[tier] = cap
	}
	for typeID, price := range req.RafflePrices {
		cfg.RafflePrices[typeID] = price
	}
	return cfg, nil
}

func (s *Server) handleSetSeasonWindow(w http.ResponseWriter, r *http.Request) {
	var req setWindowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.engine.SetSeasonWindow(s.ledger, caller, req.StartTime, req.EndTime)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handleSetUnlockTime(w http.ResponseWriter, r *http.Request) {
	var req setUnlockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	slot, err := parseSlot(req.Slot)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.engine.SetUnlockTime(s.ledger, caller, slot, req.UnlockTime)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handleSetCratePrice(w http.ResponseWriter, r *http.Request) {
	var req setCratePriceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	tier, err := parseTier(req.Tier)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	slot, err := parseSlot(req.Slot)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.engine.SetCratePrice(s.ledger, caller, tier, slot, req.Price)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handleSetCrateQuota(w http.ResponseWriter, r *http.Request) {
	var req setCrateQuotaRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	tier, err := parseTier(req.Tier)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.engine.SetCrateQuotaParams(s.ledger, caller, tier, req.Total, req.DailyRate, req.UserDailyCap)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handleSetRafflePrice(w http.ResponseWriter, r *http.Request) {
	var req setRafflePriceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.engine.SetRafflePrice(s.ledger, caller, req.TypeID, req.Price)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handleSetRaffleCap(w http.ResponseWriter, r *http.Request) {
	var req setRaffleCapRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.engine.SetRaffleUserDailyCap(s.ledger, caller, req.Cap)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handleSetMaxPayout(w http.ResponseWriter, r *http.Request) {
	var req setMaxPayoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.engine.SetMaxCratePayout(s.ledger, caller, req.Cap)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handleRegisterMerch(w http.ResponseWriter, r *http.Request) {
	var req registerMerchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.engine.RegisterMerchItem(s.ledger, caller, req.TypeID, req.Name, req.Price, req.TotalSupply)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"registered": true})
}

func (s *Server) handleRegisterParticipant(w http.ResponseWriter, r *http.Request) {
	var req registerParticipantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	s.mu.Lock()
	err = s.ledger.RegisterParticipant(addr)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"registered": true})
}

func (s *Server) handleCreditParticipant(w http.ResponseWriter, r *http.Request) {
	var req creditParticipantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() < 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", "amount must be a non-negative decimal string")
		return
	}

	s.mu.Lock()
	err = s.ledger.Credit(addr, amount)
	balance, balErr := s.ledger.Balance(addr)
	s.mu.Unlock()
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if balErr != nil {
		s.writeEngineError(w, balErr)
		return
	}
	writeJSON(w, http.StatusOK, balanceView{Address: encodeAddress(addr), Balance: balance.String()})
}
