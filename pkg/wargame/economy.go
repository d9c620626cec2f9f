package wargame

import (
	"context"
	"sort"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store"
)

func validateResourceTransfer(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if req.ResourceAmount <= 0 {
		return nil, &ValidationError{Reason: "transfer amount must be positive"}
	}
	if req.TargetCharacter == "" && req.TargetFactionID == "" {
		return nil, &ValidationError{Reason: "resource_transfer requires a recipient"}
	}
	if req.ResourceType == "" {
		return nil, &ValidationError{Reason: "resource_transfer requires a resource type"}
	}
	return &model.Order{
		OrderID:         newID("order"),
		OrderType:       string(OrderResourceTransfer),
		SubmittedByID:   submitterID,
		TargetCharacter: req.TargetCharacter,
		TargetFactionID: req.TargetFactionID,
		ResourceType:    string(req.ResourceType),
		ResourceAmount:  req.ResourceAmount,
		Term:            req.Term,
	}, nil
}

func validateCancelTransfer(ctx context.Context, tx store.Store, guildID int64, turn int, submitterID string, req OrderRequest) (*model.Order, error) {
	if req.TransferOrderID == "" {
		return nil, &ValidationError{Reason: "cancel_transfer requires the transfer order id"}
	}
	target, err := tx.GetOrder(ctx, guildID, req.TransferOrderID)
	if err != nil {
		return nil, &ValidationError{Reason: "unknown transfer order"}
	}
	if target.OrderType != string(OrderResourceTransfer) {
		return nil, &ValidationError{Reason: "referenced order is not a resource_transfer"}
	}
	if target.SubmittedByID != submitterID {
		return nil, &ValidationError{Reason: "only the transfer's submitter may cancel it"}
	}
	return &model.Order{
		OrderID:       newID("order"),
		OrderType:     string(OrderCancelTransfer),
		SubmittedByID: submitterID,
		TargetUnitID:  req.TransferOrderID, // repurposed: referenced transfer order id
	}, nil
}

// resolveResourceTransferPhase runs CANCEL_TRANSFER orders before
// RESOURCE_TRANSFER, and within the transfer bucket runs PENDING before
// ONGOING, per §5's ordering guarantees.
func resolveResourceTransferPhase(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, orders []model.Order) error {
	var cancels, pendingTransfers, ongoingTransfers []model.Order
	for _, o := range orders {
		switch OrderType(o.OrderType) {
		case OrderCancelTransfer:
			cancels = append(cancels, o)
		case OrderResourceTransfer:
			if o.Status == model.OrderOngoing {
				ongoingTransfers = append(ongoingTransfers, o)
			} else {
				pendingTransfers = append(pendingTransfers, o)
			}
		}
	}
	cancelled := map[string]bool{}
	for i := range cancels {
		o := &cancels[i]
		target, err := tx.GetOrder(ctx, guildID, o.TargetUnitID)
		if err == nil && (target.Status == model.OrderPending || target.Status == model.OrderOngoing) {
			target.Status = model.OrderCancelled
			target.RejectionReason = "cancelled_by_owner"
			if err := tx.PutOrder(ctx, target); err != nil {
				return err
			}
			cancelled[target.OrderID] = true
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseResourceTransfer, "TRANSFER_CANCELLED", "order", target.OrderID, []string{target.SubmittedByID}); err != nil {
				return err
			}
		}
		o.Status = model.OrderSuccess
		if err := failOrderOnError(ctx, tx, o, nil); err != nil {
			return err
		}
	}
	for _, bucket := range [][]model.Order{pendingTransfers, ongoingTransfers} {
		for i := range bucket {
			o := &bucket[i]
			if cancelled[o.OrderID] {
				continue
			}
			if err := executeResourceTransfer(ctx, tx, guildID, turn, sink, o); err != nil {
				return err
			}
			if err := failOrderOnError(ctx, tx, o, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func executeResourceTransfer(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, o *model.Order) error {
	available, debit := resourceGetter(ctx, tx, guildID, o.SubmittedByID, o.ActingFactionID)
	have := available(model.ResourceKind(o.ResourceType))
	paid := o.ResourceAmount
	deficit := false
	if have < paid {
		paid = have
		deficit = true
	}
	if paid > 0 {
		if err := debit(model.ResourceKind(o.ResourceType), paid); err != nil {
			return err
		}
		credit, err := resourceCredit(ctx, tx, guildID, o.TargetCharacter, o.TargetFactionID)
		if err != nil {
			return err
		}
		if err := credit(model.ResourceKind(o.ResourceType), paid); err != nil {
			return err
		}
	}
	if deficit {
		if err := emitEvent(ctx, sink, guildID, turn+1, PhaseResourceTransfer, "TRANSFER_DEFICIT", "order", o.OrderID, []string{o.SubmittedByID}); err != nil {
			return err
		}
	}
	if o.Term > 0 {
		o.TurnsExecuted++
		if o.TurnsExecuted >= o.Term {
			o.Status = model.OrderSuccess
		} else {
			o.Status = model.OrderOngoing
		}
	} else if o.Term == 0 && o.Status == model.OrderOngoing {
		// indefinite ongoing transfer: keep running until cancelled.
		o.TurnsExecuted++
	} else {
		o.Status = model.OrderOngoing
		o.TurnsExecuted++
	}
	return emitEvent(ctx, sink, guildID, turn+1, PhaseResourceTransfer, "TRANSFER_EXECUTED", "order", o.OrderID, []string{o.SubmittedByID})
}

func resourceGetter(ctx context.Context, tx store.Store, guildID int64, characterID, factionID string) (func(model.ResourceKind) int, func(model.ResourceKind, int) error) {
	if factionID != "" {
		return func(k model.ResourceKind) int {
				r, err := tx.GetFactionResources(ctx, guildID, factionID)
				if err != nil {
					return 0
				}
				return resourceField(r, k)
			}, func(k model.ResourceKind, amount int) error {
				r, err := tx.GetFactionResources(ctx, guildID, factionID)
				if err != nil {
					r = &model.FactionResources{GuildID: guildID, FactionID: factionID}
				}
				setResourceField(r, k, resourceField(r, k)-amount)
				return tx.PutFactionResources(ctx, r)
			}
	}
	return func(k model.ResourceKind) int {
			r, err := tx.GetPlayerResources(ctx, guildID, characterID)
			if err != nil {
				return 0
			}
			return resourceFieldPlayer(r, k)
		}, func(k model.ResourceKind, amount int) error {
			r, err := tx.GetPlayerResources(ctx, guildID, characterID)
			if err != nil {
				r = &model.PlayerResources{GuildID: guildID, CharacterID: characterID}
			}
			setResourceFieldPlayer(r, k, resourceFieldPlayer(r, k)-amount)
			return tx.PutPlayerResources(ctx, r)
		}
}

func resourceCredit(ctx context.Context, tx store.Store, guildID int64, characterID, factionID string) (func(model.ResourceKind, int) error, error) {
	if factionID != "" {
		return func(k model.ResourceKind, amount int) error {
			r, err := tx.GetFactionResources(ctx, guildID, factionID)
			if err != nil {
				r = &model.FactionResources{GuildID: guildID, FactionID: factionID}
			}
			setResourceField(r, k, resourceField(r, k)+amount)
			return tx.PutFactionResources(ctx, r)
		}, nil
	}
	return func(k model.ResourceKind, amount int) error {
		r, err := tx.GetPlayerResources(ctx, guildID, characterID)
		if err != nil {
			r = &model.PlayerResources{GuildID: guildID, CharacterID: characterID}
		}
		setResourceFieldPlayer(r, k, resourceFieldPlayer(r, k)+amount)
		return tx.PutPlayerResources(ctx, r)
	}, nil
}

func resourceField(r *model.FactionResources, k model.ResourceKind) int {
	switch k {
	case model.ResourceOre:
		return r.Ore
	case model.ResourceLumber:
		return r.Lumber
	case model.ResourceCoal:
		return r.Coal
	case model.ResourceRations:
		return r.Rations
	case model.ResourceCloth:
		return r.Cloth
	case model.ResourcePlatinum:
		return r.Platinum
	}
	return 0
}

func setResourceField(r *model.FactionResources, k model.ResourceKind, v int) {
	if v < 0 {
		v = 0
	}
	switch k {
	case model.ResourceOre:
		r.Ore = v
	case model.ResourceLumber:
		r.Lumber = v
	case model.ResourceCoal:
		r.Coal = v
	case model.ResourceRations:
		r.Rations = v
	case model.ResourceCloth:
		r.Cloth = v
	case model.ResourcePlatinum:
		r.Platinum = v
	}
}

func resourceFieldPlayer(r *model.PlayerResources, k model.ResourceKind) int {
	switch k {
	case model.ResourceOre:
		return r.Ore
	case model.ResourceLumber:
		return r.Lumber
	case model.ResourceCoal:
		return r.Coal
	case model.ResourceRations:
		return r.Rations
	case model.ResourceCloth:
		return r.Cloth
	case model.ResourcePlatinum:
		return r.Platinum
	}
	return 0
}

func setResourceFieldPlayer(r *model.PlayerResources, k model.ResourceKind, v int) {
	if v < 0 {
		v = 0
	}
	switch k {
	case model.ResourceOre:
		r.Ore = v
	case model.ResourceLumber:
		r.Lumber = v
	case model.ResourceCoal:
		r.Coal = v
	case model.ResourceRations:
		r.Rations = v
	case model.ResourceCloth:
		r.Cloth = v
	case model.ResourcePlatinum:
		r.Platinum = v
	}
}

var allResources = []model.ResourceKind{
	model.ResourceOre, model.ResourceLumber, model.ResourceCoal,
	model.ResourceRations, model.ResourceCloth, model.ResourcePlatinum,
}

// resolveResourceCollectionPhase aggregates territory production, each
// character's own production stat, and building bonuses into each
// character's PlayerResources (§4.6).
func resolveResourceCollectionPhase(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink) error {
	territories, err := tx.ListTerritories(ctx, guildID)
	if err != nil {
		return err
	}
	deltas := map[string][6]int{} // keyed by character id
	for _, t := range territories {
		if t.ControllerCharacterID == "" {
			continue
		}
		production, err := territoryProduction(ctx, tx, guildID, &t)
		if err != nil {
			return err
		}
		d := deltas[t.ControllerCharacterID]
		for i := 0; i < 6; i++ {
			d[i] += production[i]
		}
		deltas[t.ControllerCharacterID] = d
	}
	characters, err := tx.ListCharacters(ctx, guildID)
	if err != nil {
		return err
	}
	for _, c := range characters {
		d := deltas[c.Identifier]
		d[0] += c.OreProduction
		d[1] += c.LumberProduction
		d[2] += c.CoalProduction
		d[3] += c.RationsProduction
		d[4] += c.ClothProduction
		d[5] += c.PlatinumProduction
		deltas[c.Identifier] = d
	}
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := deltas[id]
		r, err := tx.GetPlayerResources(ctx, guildID, id)
		if err != nil {
			r = &model.PlayerResources{GuildID: guildID, CharacterID: id}
		}
		r.Ore += d[0]
		r.Lumber += d[1]
		r.Coal += d[2]
		r.Rations += d[3]
		r.Cloth += d[4]
		r.Platinum += d[5]
		if err := tx.PutPlayerResources(ctx, r); err != nil {
			return err
		}
		if err := emitEvent(ctx, sink, guildID, turn+1, PhaseResourceCollect, "RESOURCES_COLLECTED", "character", id, []string{id}); err != nil {
			return err
		}
	}
	return nil
}

// resourceKeywords lists the building keyword spelling for each of the
// six resources, index-aligned with allResources and the [6]int
// production arrays used throughout this file.
var resourceKeywords = []string{"ore", "lumber", "coal", "rations", "cloth", "platinum"}

// territoryProduction computes the six-resource effective production of
// t. Only a building that carries a given resource's own keyword can
// boost that resource; a building with no resource keyword (hospital,
// fortification, spiritual, ...) contributes nothing here regardless of
// its other keywords. For each resource k a qualifying building adds +2,
// unconditionally if the building also carries `industrial`, otherwise
// only if k's running total is already > 0 — industrial bonuses are
// applied first so they count toward that conditional check (§4.6).
func territoryProduction(ctx context.Context, tx store.Store, guildID int64, t *model.Territory) ([6]int, error) {
	production := [6]int{t.OreProduction, t.LumberProduction, t.CoalProduction, t.RationsProduction, t.ClothProduction, t.PlatinumProduction}
	buildings, err := tx.ListBuildingsByTerritory(ctx, guildID, t.TerritoryID)
	if err != nil {
		return production, err
	}
	var active []model.Building
	for _, b := range buildings {
		if b.Status == model.BuildingActive {
			active = append(active, b)
		}
	}
	for _, b := range active {
		if !hasKeyword(b.Keywords, "industrial") {
			continue
		}
		for i, kw := range resourceKeywords {
			if hasKeyword(b.Keywords, kw) {
				production[i] += 2
			}
		}
	}
	for _, b := range active {
		if hasKeyword(b.Keywords, "industrial") {
			continue
		}
		for i, kw := range resourceKeywords {
			if hasKeyword(b.Keywords, kw) && production[i] > 0 {
				production[i] += 2
			}
		}
	}
	return production, nil
}

// payUpkeep deducts costs (scaled by multiplier) from the controlling
// entity's stockpile, paying whatever is available per resource type and
// returning the count of types that came up short. A territory/unit with
// neither a controlling character nor faction is a full deficit on every
// required type (§4.6).
func payUpkeep(ctx context.Context, tx store.Store, guildID int64, characterID, factionID string, costs [6]int, multiplier int) (int, error) {
	if factionID == "" && characterID == "" {
		short := 0
		for _, c := range costs {
			if c > 0 {
				short++
			}
		}
		return short, nil
	}
	if factionID != "" {
		r, err := tx.GetFactionResources(ctx, guildID, factionID)
		if err != nil {
			r = &model.FactionResources{GuildID: guildID, FactionID: factionID}
		}
		short := 0
		for i, kind := range allResources {
			cost := costs[i] * multiplier
			if cost == 0 {
				continue
			}
			have := resourceField(r, kind)
			if have >= cost {
				setResourceField(r, kind, have-cost)
			} else {
				setResourceField(r, kind, 0)
				short++
			}
		}
		return short, tx.PutFactionResources(ctx, r)
	}
	r, err := tx.GetPlayerResources(ctx, guildID, characterID)
	if err != nil {
		r = &model.PlayerResources{GuildID: guildID, CharacterID: characterID}
	}
	short := 0
	for i, kind := range allResources {
		cost := costs[i] * multiplier
		if cost == 0 {
			continue
		}
		have := resourceFieldPlayer(r, kind)
		if have >= cost {
			setResourceFieldPlayer(r, kind, have-cost)
		} else {
			setResourceFieldPlayer(r, kind, 0)
			short++
		}
	}
	return short, tx.PutPlayerResources(ctx, r)
}

// resolveUpkeepPhase pays building upkeep, then unit upkeep, then runs
// the end-of-phase destruction cascade and organization recovery
// (§4.6). orders is unused: no order type is scheduled to this phase,
// but dispatchPhase's signature is uniform across resolvers.
func resolveUpkeepPhase(ctx context.Context, tx store.Store, guildID int64, turn int, sink store.EventSink, orders []model.Order) error {
	buildings, err := tx.ListBuildings(ctx, guildID)
	if err != nil {
		return err
	}
	sort.Slice(buildings, func(i, j int) bool {
		a, b := buildings[i], buildings[j]
		if a.Durability != b.Durability {
			return a.Durability < b.Durability
		}
		if a.TerritoryID != b.TerritoryID {
			return a.TerritoryID < b.TerritoryID
		}
		return a.Age < b.Age
	})
	territoryCache := map[string]*model.Territory{}
	getTerritory := func(id string) (*model.Territory, error) {
		if t, ok := territoryCache[id]; ok {
			return t, nil
		}
		t, err := tx.GetTerritory(ctx, guildID, id)
		if err != nil {
			return nil, err
		}
		territoryCache[id] = t
		return t, nil
	}
	for i := range buildings {
		b := &buildings[i]
		if b.Status != model.BuildingActive {
			continue
		}
		t, err := getTerritory(b.TerritoryID)
		if err != nil {
			return err
		}
		costs := [6]int{b.UpkeepOre, b.UpkeepLumber, b.UpkeepCoal, b.UpkeepRations, b.UpkeepCloth, b.UpkeepPlatinum}
		short, err := payUpkeep(ctx, tx, guildID, t.ControllerCharacterID, t.ControllerFactionID, costs, 1)
		if err != nil {
			return err
		}
		if short == 0 {
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseOrganization, "BUILDING_UPKEEP_PAID", "building", b.BuildingID, nil); err != nil {
				return err
			}
		} else {
			b.Durability -= short
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseOrganization, "BUILDING_UPKEEP_DEFICIT", "building", b.BuildingID, nil); err != nil {
				return err
			}
		}
		if err := tx.PutBuilding(ctx, b); err != nil {
			return err
		}
	}

	units, err := tx.ListUnits(ctx, guildID)
	if err != nil {
		return err
	}
	sort.Slice(units, func(i, j int) bool { return units[i].UnitID < units[j].UnitID })
	for i := range units {
		u := &units[i]
		if u.Status != model.UnitActive {
			continue
		}
		multiplier := 1
		if u.Encircled {
			multiplier = 2
		}
		costs := [6]int{u.UpkeepOre, u.UpkeepLumber, u.UpkeepCoal, u.UpkeepRations, u.UpkeepCloth, u.UpkeepPlatinum}
		short, err := payUpkeep(ctx, tx, guildID, u.OwnerCharacterID, u.OwnerFactionID, costs, multiplier)
		if err != nil {
			return err
		}
		if short == 0 {
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseOrganization, "UPKEEP_PAID", "unit", u.UnitID, []string{u.OwnerCharacterID}); err != nil {
				return err
			}
		} else {
			u.Organization -= short
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseOrganization, "UPKEEP_DEFICIT", "unit", u.UnitID, []string{u.OwnerCharacterID}); err != nil {
				return err
			}
		}
		if err := tx.PutUnit(ctx, u); err != nil {
			return err
		}
	}

	// Destruction cascade.
	for i := range buildings {
		b := &buildings[i]
		if b.Status == model.BuildingActive && b.Durability <= 0 {
			b.Status = model.BuildingDestroyed
			if err := tx.PutBuilding(ctx, b); err != nil {
				return err
			}
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseOrganization, "BUILDING_DESTROYED", "building", b.BuildingID, nil); err != nil {
				return err
			}
			if hasKeyword(b.Keywords, "spiritual") {
				nexus, err := nearestSpiritNexus(ctx, tx, guildID, b.TerritoryID)
				if err != nil {
					return err
				}
				if err := applyNexusMutation(ctx, tx, guildID, turn, PhaseOrganization, sink, nexus, -2, "NEXUS_DAMAGED"); err != nil {
					return err
				}
			}
		}
	}
	for i := range units {
		u := &units[i]
		if u.Status == model.UnitActive && u.Organization <= 0 {
			u.Status = model.UnitDisbanded
			if err := tx.PutUnit(ctx, u); err != nil {
				return err
			}
			if err := emitEvent(ctx, sink, guildID, turn+1, PhaseOrganization, "UNIT_DISBANDED", "unit", u.UnitID, []string{u.OwnerCharacterID}); err != nil {
				return err
			}
		}
	}

	// Organization recovery for units in friendly/allied territory.
	hospitalCounts := map[string]int{}
	for i := range buildings {
		b := &buildings[i]
		if b.Status == model.BuildingActive && hasKeyword(b.Keywords, "hospital") {
			hospitalCounts[b.TerritoryID]++
		}
	}
	for i := range units {
		u := &units[i]
		if u.Status != model.UnitActive || u.CurrentTerritoryID == "" {
			continue
		}
		t, err := getTerritory(u.CurrentTerritoryID)
		if err != nil {
			return err
		}
		friendly := t.ControllerCharacterID == u.OwnerCharacterID || t.ControllerFactionID == u.OwnerFactionID
		if !friendly && t.ControllerFactionID != "" && u.OwnerFactionID != "" {
			friendly = alliedActive(ctx, tx, guildID, t.ControllerFactionID, u.OwnerFactionID)
		}
		if !friendly {
			continue
		}
		recovered := u.Organization + 1 + 2*hospitalCounts[u.CurrentTerritoryID]
		if recovered > u.MaxOrganization {
			recovered = u.MaxOrganization
		}
		if recovered != u.Organization {
			u.Organization = recovered
			if err := tx.PutUnit(ctx, u); err != nil {
				return err
			}
		}
	}
	return nil
}
