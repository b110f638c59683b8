package ai

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskhive/internal/domain/task"
)

// fallbackCategories is the fixed list the local fallback draws from.
var fallbackCategories = []string{
	"Work", "Personal", "Shopping", "Health", "Finance", "Education", "Other",
}

// Suggestion is a category or description result plus its provenance.
type Suggestion struct {
	Value  string `json:"value"`
	Source string `json:"source"` // "ai" or "fallback"
}

// AdminReport collects the tasks an administrator should look at first.
type AdminReport struct {
	CriticalTasks []task.Task `json:"critical_tasks"`
	OverdueTasks  []task.Task `json:"overdue_tasks"`
	GeneratedAt   time.Time   `json:"generated_at"`
}

type Service interface {
	SuggestCategory(ctx context.Context, title string, previous []string) Suggestion
	GenerateDescription(ctx context.Context, title, summary string) Suggestion
	Report(ctx context.Context) (*AdminReport, error)
}

type service struct {
	client  Client
	tasks   task.Service
	logger  *zap.Logger
	mu      sync.Mutex
	rng     *rand.Rand
}

// NewService wires the collaborator. client may be nil, in which case every
// call takes the fallback path.
func NewService(client Client, tasks task.Service, logger *zap.Logger) Service {
	return &service{
		client: client,
		tasks:  tasks,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SuggestCategory never fails. Upstream errors are logged and the local
// fallback answers instead.
func (s *service) SuggestCategory(ctx context.Context, title string, previous []string) Suggestion {
	if s.client != nil {
		category, err := s.client.SuggestCategory(ctx, title, previous)
		if err == nil && category != "" {
			return Suggestion{Value: category, Source: "ai"}
		}
		if err != nil {
			s.logger.Warn("ai category suggestion failed, using fallback", zap.Error(err))
		}
	}
	return Suggestion{Value: s.fallbackCategory(), Source: "fallback"}
}

// GenerateDescription never fails. The fallback expands the summary with a
// fixed template so repeated calls give identical output.
func (s *service) GenerateDescription(ctx context.Context, title, summary string) Suggestion {
	if s.client != nil {
		description, err := s.client.GenerateDescription(ctx, title, summary)
		if err == nil && description != "" {
			return Suggestion{Value: description, Source: "ai"}
		}
		if err != nil {
			s.logger.Warn("ai description generation failed, using fallback", zap.Error(err))
		}
	}
	return Suggestion{Value: fallbackDescription(title, summary), Source: "fallback"}
}

func (s *service) Report(ctx context.Context) (*AdminReport, error) {
	critical, err := s.tasks.CriticalOpenTasks(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.tasks.OverdueAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminReport{
		CriticalTasks: critical,
		OverdueTasks:  overdue,
		GeneratedAt:   time.Now(),
	}, nil
}

func (s *service) fallbackCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fallbackCategories[s.rng.Intn(len(fallbackCategories))]
}

func fallbackDescription(title, summary string) string {
	title = strings.TrimSpace(title)
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return fmt.Sprintf("Complete the task %q before its due date. Break it into smaller steps if needed and track progress with notes.", title)
	}
	return fmt.Sprintf("Complete the task %q: %s. Break it into smaller steps if needed and track progress with notes.", title, summary)
}
