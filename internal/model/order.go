package model

import "time"

// OrderStatus is the lifecycle state of a submitted Order (§3, §4.1).
// PENDING -> SUCCESS | FAILED | CANCELLED | ONGOING
// ONGOING -> SUCCESS | FAILED | CANCELLED
// Terminal states (SUCCESS, FAILED, CANCELLED) never mutate again.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderOngoing   OrderStatus = "ONGOING"
	OrderSuccess   OrderStatus = "SUCCESS"
	OrderFailed    OrderStatus = "FAILED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is a single submitted order row, tenant-scoped by GuildID.
type Order struct {
	GuildID         int64       `json:"guild_id"`
	OrderID         string      `json:"order_id"`
	TurnNumber      int         `json:"turn_number"`
	Phase           string      `json:"phase"`
	Priority        int         `json:"priority"`
	OrderType       string      `json:"order_type"`
	SubmittedByID   string      `json:"submitted_by_character_id"`
	ActingFactionID string      `json:"acting_faction_id,omitempty"`
	UnitID          string      `json:"unit_id,omitempty"`
	SourceTerritory string      `json:"source_territory_id,omitempty"`
	TargetTerritory string      `json:"target_territory_id,omitempty"`
	TargetCharacter string      `json:"target_character_id,omitempty"`
	TargetFactionID string      `json:"target_faction_id,omitempty"`
	TargetUnitID    string      `json:"target_unit_id,omitempty"`
	ResourceType    string      `json:"resource_type,omitempty"`
	ResourceAmount  int         `json:"resource_amount,omitempty"`
	Term            int         `json:"term,omitempty"`
	TurnsExecuted   int         `json:"turns_executed,omitempty"`
	BuildTypeName   string      `json:"build_type_name,omitempty"`
	Path            []string    `json:"path,omitempty"`
	PathIndex       int         `json:"path_index"`
	Speed           int         `json:"speed,omitempty"`
	BlockedAt       string      `json:"blocked_at,omitempty"`
	MovementStatus  string      `json:"movement_status,omitempty"`
	TurnsActive     int         `json:"turns_active,omitempty"`
	Status          OrderStatus `json:"status"`
	RequiresConfirm bool        `json:"requires_confirmation"`
	RejectionReason string      `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time   `json:"submitted_at"`
	UpdatedAt       time.Time   `json:"updated_at,omitempty"`
	UpdatedTurn     int         `json:"updated_turn,omitempty"`
	ResolvedAt      time.Time   `json:"resolved_at,omitempty"`
}
