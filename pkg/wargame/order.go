package wargame

import "github.com/example/wargame/internal/model"

// OrderRequest is the submitter-supplied payload for SubmitOrder. Only
// the fields relevant to OrderType need be set; validators reject unused
// fields that are nonetheless populated only where spec.md calls that
// out explicitly (it does not, so extra fields are simply ignored).
type OrderRequest struct {
	OrderType       OrderType
	UnitIDs         []string
	Path            []string
	Speed           int
	SourceTerritory string
	TargetTerritory string
	TargetCharacter string
	TargetFactionID string
	TargetUnitID    string
	ResourceType    model.ResourceKind
	ResourceAmount  int
	TransferOrderID string // for CANCEL_TRANSFER
	Term            int    // ongoing transfer duration in turns; 0 = indefinite
	BuildTypeName   string
	Objective       string // DECLARE_WAR's free-text, case-insensitive-unique objective
	Override        bool
}

// OrderResult is the outcome SubmitOrder returns to the caller (§6).
type OrderResult struct {
	OrderID            string
	Rejected           bool
	RejectionReason    string
	ConfirmationNeeded bool
	ExistingOrders     []ConflictingOrder
}
