package task

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeRepository is an in-memory TaskRepository for service tests. Only the
// operations the service exercises are backed by the store; the aggregate
// reads return canned values.
type fakeRepository struct {
	tasks map[primitive.ObjectID]*Task

	trend      []TrendPoint
	categories []CategoryCount
	counts     map[TaskStatus]int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{tasks: make(map[primitive.ObjectID]*Task)}
}

func (f *fakeRepository) Create(_ context.Context, task *Task) error {
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id primitive.ObjectID) (*Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeRepository) FindAll(_ context.Context, ownerID primitive.ObjectID, _ *ListCriteria) ([]Task, int64, error) {
	tasks := f.owned(ownerID)
	return tasks, int64(len(tasks)), nil
}

func (f *fakeRepository) FindOwned(_ context.Context, ownerID primitive.ObjectID) ([]Task, error) {
	return f.owned(ownerID), nil
}

func (f *fakeRepository) Update(_ context.Context, task *Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.tasks[id]; !ok {
		return ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeRepository) FindDueToday(_ context.Context, ownerID primitive.ObjectID, now time.Time) ([]Task, error) {
	var out []Task
	for _, task := range f.owned(ownerID) {
		if task.IsDueToday(now) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindOverdue(_ context.Context, ownerID primitive.ObjectID, now time.Time) ([]Task, error) {
	var out []Task
	for _, task := range f.owned(ownerID) {
		if task.IsOverdue(now) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindUpcoming(_ context.Context, ownerID primitive.ObjectID, now time.Time, days int) ([]Task, error) {
	var out []Task
	window := time.Duration(days) * 24 * time.Hour
	for _, task := range f.owned(ownerID) {
		diff := task.DueDate.Sub(now)
		if task.Status != TaskStatusCompleted && diff >= 0 && diff <= window {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeRepository) CompletedTrend(_ context.Context, _ primitive.ObjectID, _ time.Time) ([]TrendPoint, error) {
	return f.trend, nil
}

func (f *fakeRepository) PopularCategories(_ context.Context, _ primitive.ObjectID, _ int) ([]CategoryCount, error) {
	return f.categories, nil
}

func (f *fakeRepository) StatusCounts(_ context.Context, _ primitive.ObjectID) (map[TaskStatus]int64, error) {
	return f.counts, nil
}

func (f *fakeRepository) FindAllAdmin(_ context.Context, filter AdminFilter) ([]Task, error) {
	var out []Task
	for _, task := range f.tasks {
		if filter.UserID != nil && task.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeRepository) CountAll(_ context.Context) (int64, error) {
	return int64(len(f.tasks)), nil
}

func (f *fakeRepository) CountByStatus(_ context.Context, status TaskStatus) (int64, error) {
	var n int64
	for _, task := range f.tasks {
		if task.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) CountOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, task := range f.tasks {
		if task.IsOverdue(now) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) FindCriticalOpen(_ context.Context) ([]Task, error) {
	var out []Task
	for _, task := range f.tasks {
		if task.Priority == TaskPriorityCritical && task.Status != TaskStatusCompleted {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindOverdueAll(_ context.Context, now time.Time) ([]Task, error) {
	var out []Task
	for _, task := range f.tasks {
		if task.IsOverdue(now) {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindWithDueReminders(_ context.Context, now time.Time) ([]Task, error) {
	var out []Task
	for _, task := range f.tasks {
		for _, rem := range task.Reminders {
			if !rem.Sent && !rem.Time.After(now) {
				out = append(out, *task)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepository) MarkReminderSent(_ context.Context, taskID primitive.ObjectID, index int) error {
	task, ok := f.tasks[taskID]
	if !ok || index < 0 || index >= len(task.Reminders) {
		return ErrTaskNotFound
	}
	task.Reminders[index].Sent = true
	return nil
}

func (f *fakeRepository) owned(ownerID primitive.ObjectID) []Task {
	var out []Task
	for _, task := range f.tasks {
		if task.UserID == ownerID {
			out = append(out, *task)
		}
	}
	return out
}

func newTestService(repo TaskRepository) Service {
	return NewService(repo, nil, zap.NewNop())
}

func TestCreateTaskDefaults(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	owner := primitive.NewObjectID()

	created, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:    "Buy groceries",
		Category: "Shopping",
		DueDate:  time.Now().Add(24 * time.Hour),
		OwnerID:  owner,
	})
	require.NoError(t, err)

	assert.Equal(t, TaskStatusPending, created.Status)
	assert.Equal(t, TaskPriorityMedium, created.Priority)
	assert.Nil(t, created.CompletedAt)
	assert.Equal(t, owner, created.UserID)
	assert.False(t, created.CreatedAt.IsZero())

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, stored.Title)
}

func TestCreateTaskRejectsInvalidInput(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	_, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:   "",
		OwnerID: primitive.NewObjectID(),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, repo.tasks, "nothing reaches the store on validation failure")
}

func TestTransitionStatusSetsCompletedAtOnce(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	owner := primitive.NewObjectID()
	actor := Actor{ID: owner}

	created, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:    "Finish thesis chapter",
		Category: "Education",
		DueDate:  time.Now().Add(48 * time.Hour),
		OwnerID:  owner,
	})
	require.NoError(t, err)

	completed, err := svc.TransitionStatus(context.Background(), created.ID, actor, TaskStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)
	first := *completed.CompletedAt

	// Reopen and complete again: the original timestamp survives.
	_, err = svc.TransitionStatus(context.Background(), created.ID, actor, TaskStatusInProgress)
	require.NoError(t, err)

	again, err := svc.TransitionStatus(context.Background(), created.ID, actor, TaskStatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.Equal(t, first, *again.CompletedAt)
}

func TestTransitionStatusRejectsUnknownStatus(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	_, err := svc.TransitionStatus(context.Background(), primitive.NewObjectID(), Actor{}, "archived")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestUpdateTaskPatchesOnlySuppliedFields(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	owner := primitive.NewObjectID()
	actor := Actor{ID: owner}

	created, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:       "Plan sprint",
		Description: "Draft the backlog",
		Category:    "Work",
		Priority:    TaskPriorityHigh,
		DueDate:     time.Now().Add(24 * time.Hour),
		OwnerID:     owner,
	})
	require.NoError(t, err)

	newTitle := "Plan sprint 12"
	updated, err := svc.UpdateTask(context.Background(), created.ID, actor, UpdateTaskInput{
		Title: &newTitle,
	})
	require.NoError(t, err)

	assert.Equal(t, "Plan sprint 12", updated.Title)
	assert.Equal(t, "Draft the backlog", updated.Description)
	assert.Equal(t, TaskPriorityHigh, updated.Priority)
}

func TestUpdateTaskCompletingSetsTimestamp(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	owner := primitive.NewObjectID()

	created, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:    "File taxes",
		Category: "Finance",
		DueDate:  time.Now().Add(24 * time.Hour),
		OwnerID:  owner,
	})
	require.NoError(t, err)

	done := TaskStatusCompleted
	updated, err := svc.UpdateTask(context.Background(), created.ID, Actor{ID: owner}, UpdateTaskInput{
		Status: &done,
	})
	require.NoError(t, err)
	assert.NotNil(t, updated.CompletedAt)
}

func TestOwnershipEnforced(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	owner := primitive.NewObjectID()
	stranger := Actor{ID: primitive.NewObjectID()}

	created, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:    "Private errand",
		Category: "Personal",
		DueDate:  time.Now().Add(24 * time.Hour),
		OwnerID:  owner,
	})
	require.NoError(t, err)

	_, err = svc.GetTask(context.Background(), created.ID, stranger)
	assert.ErrorIs(t, err, ErrNotOwner)

	title := "hijacked"
	_, err = svc.UpdateTask(context.Background(), created.ID, stranger, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.DeleteTask(context.Background(), created.ID, stranger)
	assert.ErrorIs(t, err, ErrNotOwner)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private errand", stored.Title, "store untouched after denied operations")
}

func TestAdminBypassesOwnership(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	owner := primitive.NewObjectID()
	admin := Actor{ID: primitive.NewObjectID(), Admin: true}

	created, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:    "Escalated issue",
		Category: "Work",
		DueDate:  time.Now().Add(24 * time.Hour),
		OwnerID:  owner,
	})
	require.NoError(t, err)

	got, err := svc.GetTask(context.Background(), created.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestAddNote(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	owner := primitive.NewObjectID()
	actor := Actor{ID: owner}

	created, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:    "Review PR",
		Category: "Work",
		DueDate:  time.Now().Add(24 * time.Hour),
		OwnerID:  owner,
	})
	require.NoError(t, err)

	updated, err := svc.AddNote(context.Background(), created.ID, actor, "waiting on CI")
	require.NoError(t, err)
	require.Len(t, updated.Notes, 1)
	assert.Equal(t, "waiting on CI", updated.Notes[0].Content)
	assert.Equal(t, owner, updated.Notes[0].CreatedBy)

	// Over-length note is rejected and nothing is stored.
	_, err = svc.AddNote(context.Background(), created.ID, actor, strings.Repeat("n", 1001))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Notes, 1)
}

func TestAddReminderDefaultsChannel(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	owner := primitive.NewObjectID()

	created, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:    "Dentist appointment",
		Category: "Health",
		DueDate:  time.Now().Add(72 * time.Hour),
		OwnerID:  owner,
	})
	require.NoError(t, err)

	at := time.Now().Add(48 * time.Hour)
	updated, err := svc.AddReminder(context.Background(), created.ID, Actor{ID: owner}, at, "")
	require.NoError(t, err)
	require.Len(t, updated.Reminders, 1)
	assert.Equal(t, ReminderChannelBoth, updated.Reminders[0].Channel)
	assert.False(t, updated.Reminders[0].Sent)
}

func TestListTasksPagination(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	owner := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateTask(context.Background(), CreateTaskInput{
			Title:    "Task",
			Category: "Work",
			DueDate:  time.Now().Add(time.Duration(i+1) * 24 * time.Hour),
			OwnerID:  owner,
		})
		require.NoError(t, err)
	}

	page, err := svc.ListTasks(context.Background(), owner, ListCriteria{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, int64(2), page.Pages)
}

func TestSummarizeZeroFillsStatusCounts(t *testing.T) {
	repo := newFakeRepository()
	repo.counts = map[TaskStatus]int64{TaskStatusPending: 4}
	svc := newTestService(repo)

	summary, err := svc.Summarize(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.StatusCounts[TaskStatusPending])
	assert.Equal(t, int64(0), summary.StatusCounts[TaskStatusInProgress])
	assert.Equal(t, int64(0), summary.StatusCounts[TaskStatusCompleted])
	assert.Equal(t, int64(0), summary.StatusCounts[TaskStatusCancelled])
}

func TestStats(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)
	owner := primitive.NewObjectID()

	created, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:    "Done already",
		Category: "Work",
		DueDate:  time.Now().Add(24 * time.Hour),
		OwnerID:  owner,
	})
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), created.ID, Actor{ID: owner}, TaskStatusCompleted)
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TaskCount)
	assert.Equal(t, int64(1), stats.CompletedTasks)
	assert.Equal(t, int64(0), stats.OverdueTasks)
}
