package handlers

import (
	"time"

	"taskhive/internal/api/dto"
	"taskhive/internal/domain/ai"
	"taskhive/internal/domain/audit"
	"taskhive/internal/domain/task"
	"taskhive/internal/domain/user"
)

// TaskToResponse converts a domain task to its API representation. The
// derived flags are evaluated against the current clock.
func TaskToResponse(t *task.Task) dto.TaskResponse {
	now := time.Now()

	notes := make([]dto.NoteResponse, len(t.Notes))
	for i, n := range t.Notes {
		notes[i] = dto.NoteResponse{
			Content:   n.Content,
			CreatedBy: n.CreatedBy.Hex(),
			CreatedAt: n.CreatedAt,
		}
	}

	reminders := make([]dto.ReminderResponse, len(t.Reminders))
	for i, r := range t.Reminders {
		reminders[i] = dto.ReminderResponse{
			Time:    r.Time,
			Channel: string(r.Channel),
			Sent:    r.Sent,
		}
	}

	return dto.TaskResponse{
		ID:          t.ID.Hex(),
		Title:       t.Title,
		Description: t.Description,
		Summary:     t.Summary,
		Category:    t.Category,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		UserID:      t.UserID.Hex(),
		Tags:        t.Tags,
		Notes:       notes,
		Reminders:   reminders,
		EstimatedTime: t.EstimatedTime,
		ActualTime:    t.ActualTime,
		AIGenerated: dto.AIGeneratedFlags{
			Description: t.AIGenerated.Description,
			Category:    t.AIGenerated.Category,
		},
		IsOverdue:            t.IsOverdue(now),
		IsDueToday:           t.IsDueToday(now),
		IsDueSoon:            t.IsDueSoon(now),
		CompletionPercentage: t.CompletionPercentage(),
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

func TasksToResponse(tasks []task.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = TaskToResponse(&tasks[i])
	}
	return out
}

func DashboardToResponse(summary *task.DashboardSummary) dto.DashboardResponse {
	trend := make([]dto.TrendPoint, len(summary.CompletedTrend))
	for i, p := range summary.CompletedTrend {
		trend[i] = dto.TrendPoint{Date: p.Date, Count: p.Count}
	}

	categories := make([]dto.CategoryCount, len(summary.PopularCategories))
	for i, c := range summary.PopularCategories {
		categories[i] = dto.CategoryCount{Category: c.Category, Count: c.Count}
	}

	counts := make(map[string]int64, len(summary.StatusCounts))
	for status, count := range summary.StatusCounts {
		counts[string(status)] = count
	}

	return dto.DashboardResponse{
		TasksDueToday:     TasksToResponse(summary.TasksDueToday),
		OverdueTasks:      TasksToResponse(summary.OverdueTasks),
		UpcomingTasks:     TasksToResponse(summary.UpcomingTasks),
		CompletedTrend:    trend,
		PopularCategories: categories,
		StatusCounts:      counts,
	}
}

func UserToResponse(u *user.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		FirstName: u.Profile.FirstName,
		LastName:  u.Profile.LastName,
		Avatar:    u.Profile.Avatar,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

func UsersToResponse(users []user.User) []dto.UserResponse {
	out := make([]dto.UserResponse, len(users))
	for i := range users {
		out[i] = UserToResponse(&users[i])
	}
	return out
}

func ReportToResponse(report *ai.AdminReport) dto.AdminReportResponse {
	return dto.AdminReportResponse{
		CriticalTasks: TasksToResponse(report.CriticalTasks),
		OverdueTasks:  TasksToResponse(report.OverdueTasks),
		GeneratedAt:   report.GeneratedAt,
	}
}

func AuditEntriesToResponse(entries []audit.Entry) []dto.AuditEntryResponse {
	out := make([]dto.AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.AuditEntryResponse{
			ID:        e.ID.Hex(),
			UserID:    e.UserID.Hex(),
			Action:    e.Action,
			Resource:  e.Resource,
			Method:    e.Details.Method,
			Path:      e.Details.Path,
			Status:    e.Details.Status,
			IP:        e.IP,
			Timestamp: e.Timestamp,
		}
	}
	return out
}
