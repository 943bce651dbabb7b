package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"brainboard/internal/model"
)

// Export fetches the whole session: metadata, cards and groups. The board is (re)loaded from it.
func (c *Client) Export(ctx context.Context, sessionID int) (model.Snapshot, error) {
	const op = "export session"

	if err := validateRequest(sessionIDRequest{SessionID: sessionID}); err != nil {
		return model.Snapshot{}, err
	}
	q := url.Values{"session_id": {strconv.Itoa(sessionID)}}
	var resp exportResponse
	reqID, err := c.do(ctx, op, http.MethodGet, pathExport, q, nil, &resp)
	if err != nil {
		return model.Snapshot{}, err
	}
	if err := resp.check(op, reqID); err != nil {
		return model.Snapshot{}, err
	}
	if resp.Data == nil {
		return model.Snapshot{Session: model.Session{ID: sessionID}, Cards: []model.Card{}}, nil
	}
	snap := resp.Data.toModel()
	if snap.Session.ID == 0 {
		snap.Session.ID = sessionID
	}
	return snap, nil
}

// ClearAll deletes every card of the session.
func (c *Client) ClearAll(ctx context.Context, sessionID int) error {
	const op = "clear all"

	req := sessionIDRequest{SessionID: sessionID}
	if err := validateRequest(req); err != nil {
		return err
	}
	var resp envelope
	reqID, err := c.do(ctx, op, http.MethodPost, pathClearAll, nil, req, &resp)
	if err != nil {
		return err
	}
	return resp.check(op, reqID)
}

// FinishSession closes the session and returns the URL the backend wants the user sent to.
// A relative redirect is resolved against the client's base URL.
func (c *Client) FinishSession(ctx context.Context, sessionID int) (string, error) {
	const op = "finish session"

	req := sessionIDRequest{SessionID: sessionID}
	if err := validateRequest(req); err != nil {
		return "", err
	}
	var resp finishResponse
	reqID, err := c.do(ctx, op, http.MethodPost, pathFinishSession, nil, req, &resp)
	if err != nil {
		return "", err
	}
	if err := resp.check(op, reqID); err != nil {
		return "", err
	}
	redirect := strings.TrimSpace(resp.RedirectURL)
	if redirect == "" {
		return "", nil
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return redirect, nil
	}
	ref, err := url.Parse(redirect)
	if err != nil {
		return redirect, nil
	}
	return base.ResolveReference(ref).String(), nil
}

type CreateGroupRequest struct {
	SessionID   int
	Name        string
	Description string
	Color       string
}

func (c *Client) CreateGroup(ctx context.Context, in CreateGroupRequest) (model.Group, error) {
	const op = "create group"

	req := createGroupRequest{
		SessionID:   in.SessionID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Color:       in.Color,
	}
	if err := validateRequest(req); err != nil {
		return model.Group{}, err
	}
	var resp groupResponse
	reqID, err := c.do(ctx, op, http.MethodPost, pathCreateGroup, nil, req, &resp)
	if err != nil {
		return model.Group{}, err
	}
	if err := resp.check(op, reqID); err != nil {
		return model.Group{}, err
	}
	if resp.Group == nil {
		return model.Group{Name: req.Name, Description: req.Description, Color: req.Color}, nil
	}
	return resp.Group.toModel(), nil
}
