package api

import (
	"context"
	"net/http"

	"brainboard/internal/model"
)

// RequestSuggestions asks the backend for new ideas given the board's context and the texts
// already on it. A success:false answer and an empty list both yield *EmptyResultError.
func (c *Client) RequestSuggestions(ctx context.Context, sessionID int, sc model.SessionContext, existing []string) ([]string, error) {
	const op = "get suggestions"

	if existing == nil {
		existing = []string{}
	}
	req := suggestionsRequest{SessionID: sessionID, Context: sc, ExistingCards: existing}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var resp suggestionsResponse
	if _, err := c.do(ctx, op, http.MethodPost, pathSuggestions, nil, req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || len(resp.Suggestions) == 0 {
		return nil, &EmptyResultError{Op: op, Message: resp.failure()}
	}
	return resp.Suggestions, nil
}
