package audit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const recordTimeout = 5 * time.Second

// Recorder writes audit entries without ever blocking or failing the request
// that triggered them. Persistence happens on a background goroutine; a write
// failure is logged locally and otherwise dropped.
type Recorder struct {
	repo AuditRepository
	log  *logrus.Logger
}

func NewRecorder(repo AuditRepository) *Recorder {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	return &Recorder{repo: repo, log: log}
}

// Record persists the entry asynchronously. It is safe to call from request
// handlers; the caller's context is deliberately not used so cancellation of
// the request cannot lose the record.
func (r *Recorder) Record(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := r.repo.Insert(ctx, &entry); err != nil {
			r.log.WithFields(logrus.Fields{
				"action": entry.Action,
				"user":   entry.UserID.Hex(),
			}).WithError(err).Error("failed to persist audit entry")
		}
	}()
}

// Query returns recent entries, newest first.
func (r *Recorder) Query(ctx context.Context, userID *primitive.ObjectID, action string, limit int64) ([]Entry, error) {
	return r.repo.Find(ctx, Filter{UserID: userID, Action: action, Limit: limit})
}
