package dto

import "time"

// PredictCategoryRequest asks the collaborator for a category suggestion
type PredictCategoryRequest struct {
	Title              string   `json:"title" binding:"required"`
	PreviousCategories []string `json:"previous_categories"`
}

// GenerateDescriptionRequest asks the collaborator to expand a summary
type GenerateDescriptionRequest struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary"`
}

// SuggestionResponse carries the suggestion and whether it came from the
// upstream model or the local fallback
type SuggestionResponse struct {
	Value  string `json:"value"`
	Source string `json:"source"`
}

// AdminReportResponse lists the tasks needing admin attention
type AdminReportResponse struct {
	CriticalTasks []TaskResponse `json:"critical_tasks"`
	OverdueTasks  []TaskResponse `json:"overdue_tasks"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// AuditEntryResponse is the API representation of an audit record
type AuditEntryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource,omitempty"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	IP        string    `json:"ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
