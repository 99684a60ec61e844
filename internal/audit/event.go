// Package audit records who changed what through the API. Events are buffered
// in memory and written to the audit_events table in batches.
package audit

import "time"

// Actions recorded by the API.
const (
	ActionRegister     = "user.register"
	ActionUserUpdate   = "user.update"
	ActionTeamCreate   = "team.create"
	ActionTeamUpdate   = "team.update"
	ActionTeamDelete   = "team.delete"
	ActionPlayerAdd    = "team.player_add"
	ActionPlayerRemove = "team.player_remove"
	ActionGameCreate   = "game.create"
	ActionGameUpdate   = "game.update"
	ActionGameDelete   = "game.delete"
)

type Event struct {
	ID           int64     `json:"id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	ActorID      int64     `json:"actorId"`
	ActorEmail   string    `json:"actorEmail"`
	RequestID    string    `json:"requestId"`
	ClientIP     string    `json:"clientIp"`
	CreatedAt    time.Time `json:"createdAt"`
}
