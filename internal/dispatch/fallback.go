package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/warpdl/reminder/internal/reminder"
	"github.com/warpdl/reminder/pkg/logger"
)

// Fallback tries Primary and, on any error, Secondary. Primary errors are
// only logged; Secondary errors are returned.
type Fallback struct {
	Primary   Service
	Secondary Service
	Log       logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Create rejects invalid requests itself, so the outcome does not depend
// on whether the remote peer is reachable.
func (f *Fallback) Create(ctx context.Context, req CreateRequest) (*Receipt, error) {
	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	if err := validate(req, now); err != nil {
		return nil, err
	}
	receipt, err := f.Primary.Create(ctx, req)
	if err == nil {
		f.log().Info("Reminder %q handed to remote coordinator", req.Title)
		return receipt, nil
	}
	f.note("create", err)
	return f.Secondary.Create(ctx, req)
}

func (f *Fallback) List(ctx context.Context) (*Listing, error) {
	listing, err := f.Primary.List(ctx)
	if err == nil {
		return listing, nil
	}
	f.note("list", err)
	return f.Secondary.List(ctx)
}

func (f *Fallback) Cancel(ctx context.Context, id string) (*Outcome, error) {
	outcome, err := f.Primary.Cancel(ctx, id)
	if err == nil {
		return outcome, nil
	}
	f.note("cancel", err)
	return f.Secondary.Cancel(ctx, id)
}

// note logs a primary failure. A rejection the peer did not mark as
// "fall back" is unexpected and logged as an error; unavailability is
// routine.
func (f *Fallback) note(op string, err error) {
	var rejected *reminder.RemoteRejectedError
	switch {
	case errors.As(err, &rejected) && !rejected.Fallback:
		f.log().Error("Remote %s failed, using local store: %v", op, err)
	default:
		f.log().Warning("Remote %s unavailable, using local store: %v", op, err)
	}
}

func (f *Fallback) log() logger.Logger {
	if f.Log == nil {
		return logger.NewNopLogger()
	}
	return f.Log
}

var _ Service = (*Fallback)(nil)
