package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/warpdl/reminder/common"
	"github.com/warpdl/reminder/internal/reminder"
)

const maxResponseSize = 1 << 20

// Remote talks to the remote coordinator's REST API. Every call is bounded
// by the client timeout.
type Remote struct {
	BaseURL string
	Client  *http.Client
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRemote returns a client for baseURL, e.g. http://localhost:3579.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (r *Remote) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// do sends a request and decodes the response envelope. Transport
// failures and unparsable bodies wrap reminder.ErrRemoteUnavailable;
// ok=false becomes *reminder.RemoteRejectedError.
func (r *Remote) do(ctx context.Context, method, path string, body any) (*common.RemoteResponse, error) {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", reminder.ErrRemoteUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", reminder.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", reminder.ErrRemoteUnavailable, err)
	}
	var env common.RemoteResponse
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s %s: HTTP %d: unparsable response", reminder.ErrRemoteUnavailable, method, path, resp.StatusCode)
	}
	if !env.Ok {
		return nil, &reminder.RemoteRejectedError{Message: env.Error, Fallback: env.Fallback}
	}
	return &env, nil
}

func (r *Remote) Create(ctx context.Context, req CreateRequest) (*Receipt, error) {
	env, err := r.do(ctx, http.MethodPost, "/api/reminder", &common.RemoteCreateParams{
		Title:       req.Title,
		Message:     req.Message,
		TriggerTime: req.Trigger.UnixMilli(),
	})
	if err != nil {
		return nil, err
	}
	receipt := &Receipt{
		Title:       req.Title,
		Message:     req.Message,
		TriggerTime: time.UnixMilli(req.Trigger.UnixMilli()),
		Remote:      true,
	}
	var created common.RemoteCreated
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &created) == nil {
		receipt.ID = created.ID
	}
	return receipt, nil
}

// List treats an ok response as authoritative, even when it is empty.
func (r *Remote) List(ctx context.Context) (*Listing, error) {
	env, err := r.do(ctx, http.MethodGet, "/api/reminders", nil)
	if err != nil {
		return nil, err
	}
	var data common.RemoteListData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: list data: %v", reminder.ErrRemoteUnavailable, err)
		}
	}

	now := r.now()
	listing := &Listing{Entries: make([]Entry, 0, len(data.Reminders)), Remote: true}
	for _, item := range data.Reminders {
		if item == nil {
			continue
		}
		left := item.TimeLeft
		if left == 0 {
			left = item.TriggerTime - now.UnixMilli()
		}
		if left < 0 {
			left = 0
		}
		listing.Entries = append(listing.Entries, Entry{
			ID:          item.ID,
			Title:       item.Title,
			Message:     item.Message,
			TriggerTime: time.UnixMilli(item.TriggerTime),
			TimeLeft:    left,
		})
	}
	return listing, nil
}

func (r *Remote) Cancel(ctx context.Context, id string) (*Outcome, error) {
	if _, err := r.do(ctx, http.MethodDelete, "/api/reminder/"+url.PathEscape(id), nil); err != nil {
		return nil, err
	}
	return &Outcome{ID: id, Found: true}, nil
}

var _ Service = (*Remote)(nil)
