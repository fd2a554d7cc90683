package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vrjatclg/Time2Eat/internal/models"
	"github.com/vrjatclg/Time2Eat/internal/store"
)

// BlockingPolicy blocks students who cancel too many orders within a rolling
// window. It never unblocks on its own.
type BlockingPolicy struct {
	students  store.Students
	orders    store.Orders
	threshold int
	window    time.Duration
	publisher Publisher
	now       func() time.Time
}

func NewBlockingPolicy(students store.Students, orders store.Orders, threshold int, window time.Duration, pub Publisher, now func() time.Time) *BlockingPolicy {
	if threshold <= 0 {
		threshold = DefaultCancelThreshold
	}
	if window <= 0 {
		window = DefaultCancelWindow
	}
	if pub == nil {
		pub = nopPublisher{}
	}
	if now == nil {
		now = defaultClock
	}
	return &BlockingPolicy{
		students:  students,
		orders:    orders,
		threshold: threshold,
		window:    window,
		publisher: pub,
		now:       now,
	}
}

func (p *BlockingPolicy) Threshold() int { return p.threshold }

// CountRecentCancellations counts cancelled orders of pid created inside the
// window ending now.
func (p *BlockingPolicy) CountRecentCancellations(ctx context.Context, pid string) (int, error) {
	n, err := p.orders.Count(ctx, store.OrderFilter{
		PID:    pid,
		Status: models.StatusCancelled,
		Since:  p.now().Add(-p.window),
	})
	if err != nil {
		return 0, fmt.Errorf("count cancellations: %w", err)
	}
	return int(n), nil
}

// EvaluateAndBlock blocks pid once the recent cancellation count reaches the
// threshold and reports whether it did.
func (p *BlockingPolicy) EvaluateAndBlock(ctx context.Context, pid string) (bool, error) {
	count, err := p.CountRecentCancellations(ctx, pid)
	if err != nil {
		return false, err
	}
	if count < p.threshold {
		return false, nil
	}
	if err := p.SetBlocked(ctx, pid, true); err != nil {
		return false, err
	}
	log.Warn().
		Str("component", "blocking").
		Str("pid", pid).
		Int("cancellations", count).
		Msg("student blocked for repeated cancellations")
	return true, nil
}

func (p *BlockingPolicy) SetBlocked(ctx context.Context, pid string, blocked bool) error {
	now := p.now()
	if err := p.students.SetBlocked(ctx, pid, blocked, now); err != nil {
		return fmt.Errorf("set blocked: %w", err)
	}
	eventType := models.EventStudentUnblocked
	if blocked {
		eventType = models.EventStudentBlocked
	}
	p.publisher.Publish(ctx, models.OrderEvent{Type: eventType, PID: pid, OccurredAt: now})
	return nil
}

// IsBlocked treats an unknown student as not blocked.
func (p *BlockingPolicy) IsBlocked(ctx context.Context, pid string) (bool, error) {
	student, err := p.students.Get(ctx, pid)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load student: %w", err)
	}
	return student.Blocked, nil
}

type StudentStatus struct {
	PID                 string `json:"pid"`
	Blocked             bool   `json:"blocked"`
	RecentCancellations int    `json:"recentCancellations"`
	Registered          bool   `json:"registered"`
}

// SetBlocked lets staff block or unblock a student explicitly.
func (s *Service) SetBlocked(ctx context.Context, rawPID string, blocked bool) (StudentStatus, error) {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return StudentStatus{}, err
	}
	if err := s.blocking.SetBlocked(ctx, pid, blocked); err != nil {
		return StudentStatus{}, err
	}
	s.logger.Info().Str("pid", pid).Bool("blocked", blocked).Msg("student block flag changed by staff")
	return s.GetStudent(ctx, pid)
}

func (s *Service) GetStudent(ctx context.Context, rawPID string) (StudentStatus, error) {
	pid, err := CanonicalPID(rawPID)
	if err != nil {
		return StudentStatus{}, err
	}
	status := StudentStatus{PID: pid}
	student, err := s.store.Students.Get(ctx, pid)
	switch {
	case err == nil:
		status.Registered = true
		status.Blocked = student.Blocked
	case !errors.Is(err, store.ErrNotFound):
		return StudentStatus{}, fmt.Errorf("load student: %w", err)
	}
	count, err := s.blocking.CountRecentCancellations(ctx, pid)
	if err != nil {
		return StudentStatus{}, err
	}
	status.RecentCancellations = count
	return status, nil
}
