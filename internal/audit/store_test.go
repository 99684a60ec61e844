package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertQuery(t *testing.T) {
	at := time.Date(2024, 12, 17, 9, 0, 0, 0, time.UTC)
	events := []Event{
		{Action: ActionTeamCreate, ResourceType: "team", ResourceID: "1", ActorID: 2, CreatedAt: at},
		{Action: ActionGameCreate, ResourceType: "game", ResourceID: "7", ActorID: 2, CreatedAt: at},
	}

	query, args, err := insertQuery(events).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO audit_events (action,resource_type,resource_id,actor_id,actor_email,request_id,client_ip,created_at)")
	assert.Contains(t, query, "($1,$2,$3,$4,$5,$6,$7,$8),($9,$10,$11,$12,$13,$14,$15,$16)")
	require.Len(t, args, 16)
	assert.Equal(t, ActionTeamCreate, args[0])
	assert.Equal(t, "7", args[10])
}

func TestRecentQuery(t *testing.T) {
	query, args, err := recentQuery(25).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, action, resource_type, resource_id, actor_id, actor_email, request_id, client_ip, created_at "+
			"FROM audit_events ORDER BY created_at DESC, id DESC LIMIT 25",
		query)
	assert.Empty(t, args)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultLimit},
		{"abc", DefaultLimit},
		{"-3", DefaultLimit},
		{"0", DefaultLimit},
		{"10", 10},
		{"100000", MaxLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimit(tt.raw), "raw=%q", tt.raw)
	}
}
