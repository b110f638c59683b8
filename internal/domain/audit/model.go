package audit

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action names are dot-separated resource.verb pairs, e.g. "task.create".
const (
	ActionUserRegister = "user.register"
	ActionUserLogin    = "user.login"
	ActionUserLogout   = "user.logout"

	ActionTaskCreate     = "task.create"
	ActionTaskUpdate     = "task.update"
	ActionTaskTransition = "task.transition"
	ActionTaskDelete     = "task.delete"
	ActionTaskExport     = "task.export"

	ActionAISuggest  = "ai.suggest_category"
	ActionAIDescribe = "ai.generate_description"

	ActionAdminUserUpdate = "admin.user.update"
	ActionAdminUserDelete = "admin.user.delete"
)

// Details captures the HTTP context of the recorded action.
type Details struct {
	Method string `bson:"method" json:"method"`
	Path   string `bson:"path" json:"path"`
	Query  string `bson:"query,omitempty" json:"query,omitempty"`
	Status int    `bson:"status" json:"status"`
}

// Entry is a single audit record. Entries are append-only.
type Entry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user" json:"user_id"`
	Action    string             `bson:"action" json:"action"`
	Resource  string             `bson:"resource,omitempty" json:"resource,omitempty"`
	Details   Details            `bson:"details" json:"details"`
	IP        string             `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
