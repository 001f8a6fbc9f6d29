package propagation

import (
	"context"

	"github.com/robinjoseph08/golib/logger"
)

// UpdateType distinguishes the two lifecycle events the bookstore propagates
// to the library service.
type UpdateType string

const (
	UpdateCreated UpdateType = "CREATED"
	UpdateDeleted UpdateType = "DELETED"
)

// Update is the lifecycle event payload exchanged between the bookstore and
// library services.
type Update struct {
	BookID     int        `json:"book_id" validate:"required"`
	UpdateType UpdateType `json:"update_type" validate:"required,oneof=CREATED DELETED"`
}

// LeaseNotifier delivers a lifecycle update to the library service. A nil
// error means the library accepted the update.
type LeaseNotifier interface {
	NotifyBookUpdate(ctx context.Context, update Update) error
}

// Phase records how far a coordinated write progressed before it stopped.
type Phase string

const (
	// PhaseNone means the local write itself failed; nothing was propagated.
	PhaseNone Phase = ""
	// PhaseSaved means the local write succeeded but notification failed and
	// compensation was attempted.
	PhaseSaved Phase = "saved"
	// PhaseNotified means both the local write and the notification succeeded.
	PhaseNotified Phase = "notified"
	// PhaseCompensated means notification failed and the local write was
	// successfully rolled back.
	PhaseCompensated Phase = "compensated"
)

// Result describes the outcome of a coordinated write. When notification
// fails, Phase tells whether compensation succeeded (PhaseCompensated) or
// itself failed (PhaseSaved), and CompensationErr carries the rollback error
// in the latter case.
type Result struct {
	Phase           Phase
	CompensationErr error
}

// Coordinator runs local writes and their cross-service notifications in a
// fixed order, compensating the local write when the remote side can't be
// reached.
type Coordinator struct {
	notifier LeaseNotifier
}

// NewCoordinator creates a Coordinator delivering through the given notifier.
func NewCoordinator(notifier LeaseNotifier) *Coordinator {
	return &Coordinator{notifier: notifier}
}

// SaveThenNotify performs the create ordering: run the local write, then
// notify the library with the update the write produced. If notification
// fails, compensate undoes the local write on a best-effort basis and the
// notification error is returned. The Result reports which phase the
// operation reached either way.
func (c *Coordinator) SaveThenNotify(ctx context.Context, save func(ctx context.Context) (Update, error), compensate func(ctx context.Context) error) (Result, error) {
	update, err := save(ctx)
	if err != nil {
		return Result{Phase: PhaseNone}, err
	}

	if err := c.notifier.NotifyBookUpdate(ctx, update); err != nil {
		if cerr := compensate(ctx); cerr != nil {
			logger.FromContext(ctx).
				Data(logger.Data{"book_id": update.BookID}).
				Err(cerr).
				Error("compensation failed after notify error")
			return Result{Phase: PhaseSaved, CompensationErr: cerr}, err
		}
		return Result{Phase: PhaseCompensated}, err
	}

	return Result{Phase: PhaseNotified}, nil
}

// NotifyThenApply performs the delete ordering: notify the library first and
// only apply the local write once the library has acknowledged. A notify
// failure leaves local state untouched, so there is nothing to compensate.
func (c *Coordinator) NotifyThenApply(ctx context.Context, update Update, apply func(ctx context.Context) error) (Result, error) {
	if err := c.notifier.NotifyBookUpdate(ctx, update); err != nil {
		return Result{Phase: PhaseNone}, err
	}

	if err := apply(ctx); err != nil {
		return Result{Phase: PhaseNotified}, err
	}

	return Result{Phase: PhaseNotified}, nil
}
