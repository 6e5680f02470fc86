package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/proptax/backend/internal/domain/audit"
	"gorm.io/datatypes"
)

// AuditLogModel is an append-only audit row. Snapshots are stored verbatim as JSON.
type AuditLogModel struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key"`
	ActorID    string            `gorm:"type:varchar(100);not null;index"`
	Action     string            `gorm:"type:varchar(50);not null;index"`
	TargetType string            `gorm:"type:varchar(20);not null;index:idx_audit_logs_target,priority:1"`
	TargetID   uuid.UUID         `gorm:"type:uuid;index:idx_audit_logs_target,priority:2"`
	Before     datatypes.JSON    `gorm:"column:before_snapshot"`
	After      datatypes.JSON    `gorm:"column:after_snapshot"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	IPAddress  string            `gorm:"type:varchar(64)"`
	UserAgent  string            `gorm:"type:text"`
	RequestID  string            `gorm:"type:varchar(64)"`
	CreatedAt  time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// ToDomain converts the persistence model to a domain audit Entry.
func (m *AuditLogModel) ToDomain() audit.Entry {
	return audit.Entry{
		ID:        m.ID,
		ActorID:   m.ActorID,
		Action:    audit.Action(m.Action),
		Target:    toRef(m.TargetType, m.TargetID),
		Before:    rawJSON(m.Before),
		After:     rawJSON(m.After),
		Metadata:  metadataFromJSON(m.Metadata),
		IPAddress: m.IPAddress,
		UserAgent: m.UserAgent,
		RequestID: m.RequestID,
		CreatedAt: m.CreatedAt,
	}
}

// AuditLogModelFromDomain creates a new persistence model from a domain audit Entry.
func AuditLogModelFromDomain(e *audit.Entry) *AuditLogModel {
	return &AuditLogModel{
		ID:         e.ID,
		ActorID:    e.ActorID,
		Action:     string(e.Action),
		TargetType: e.Target.Kind.String(),
		TargetID:   e.Target.ID,
		Before:     datatypes.JSON(e.Before),
		After:      datatypes.JSON(e.After),
		Metadata:   datatypes.JSONMap(e.Metadata),
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		RequestID:  e.RequestID,
		CreatedAt:  e.CreatedAt,
	}
}

func rawJSON(j datatypes.JSON) json.RawMessage {
	if len(j) == 0 || string(j) == "null" {
		return nil
	}
	return json.RawMessage(j)
}

// metadataFromJSON turns the json.Number values JSONMap decodes into int64
// where they are whole, float64 otherwise.
func metadataFromJSON(m datatypes.JSONMap) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = fromJSONValue(v)
	}
	return out
}

func fromJSONValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		return metadataFromJSON(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromJSONValue(item)
		}
		return out
	default:
		return v
	}
}
