package market

// Inventory is a participant's ordered ownership record. Ids are appended in
// purchase order and never removed; keyed lookups live in the surrounding
// state implementation.
type Inventory struct {
	Owner        Address  `json:"owner"`
	CrateIDs     []uint64 `json:"crateIds,omitempty"`
	RaffleIDs    []uint64 `json:"raffleIds,omitempty"`
	MerchTypeIDs []uint32 `json:"merchTypeIds,omitempty"`
}

// Clone produces a deep copy of the inventory.
func (inv *Inventory) Clone() *Inventory {
	if inv == nil {
		return &Inventory{}
	}
	clone := &Inventory{Owner: inv.Owner}
	if len(inv.CrateIDs) > 0 {
		clone.CrateIDs = append([]uint64(nil), inv.CrateIDs...)
	}
	if len(inv.RaffleIDs) > 0 {
		clone.RaffleIDs = append([]uint64(nil), inv.RaffleIDs...)
	}
	if len(inv.MerchTypeIDs) > 0 {
		clone.MerchTypeIDs = append([]uint32(nil), inv.MerchTypeIDs...)
	}
	return clone
}

func (inv *Inventory) addCrate(id uint64)     { inv.CrateIDs = append(inv.CrateIDs, id) }
func (inv *Inventory) addRaffle(id uint64)    { inv.RaffleIDs = append(inv.RaffleIDs, id) }
func (inv *Inventory) addMerch(typeID uint32) { inv.MerchTypeIDs = append(inv.MerchTypeIDs, typeID) }
