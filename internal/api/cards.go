package api

import (
	"context"
	"net/http"
	"strings"

	"brainboard/internal/model"
)

type CreateCardRequest struct {
	SessionID int
	Text      string
	Color     string
	Category  model.Category
	Position  model.Position
}

// CreateCard persists a new card. The returned card carries the backend id; fields the
// backend leaves out of its answer are filled from the request.
func (c *Client) CreateCard(ctx context.Context, in CreateCardRequest) (model.Card, error) {
	const op = "add card"

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return model.Card{}, &ValidationError{Field: "text", Message: "is required"}
	}
	req := addCardRequest{
		SessionID: in.SessionID,
		Text:      text,
		Content:   text,
		Color:     in.Color,
		Category:  string(in.Category),
		PositionX: in.Position.X,
		PositionY: in.Position.Y,
	}
	if err := validateRequest(req); err != nil {
		return model.Card{}, err
	}

	var resp cardResponse
	reqID, err := c.do(ctx, op, http.MethodPost, pathAddCard, nil, req, &resp)
	if err != nil {
		return model.Card{}, err
	}
	if err := resp.check(op, reqID); err != nil {
		return model.Card{}, err
	}

	card := model.Card{Text: text, Color: in.Color, Category: in.Category, Position: in.Position}
	if resp.Card != nil {
		got := resp.Card.toModel()
		card.ID = got.ID
		if got.Text != "" {
			card.Text = got.Text
		}
		if got.Color != "" {
			card.Color = got.Color
		}
		if got.Category != "" {
			card.Category = got.Category
		}
		if resp.Card.PositionX != nil && resp.Card.PositionY != nil {
			card.Position = got.Position
		}
	}
	return card, nil
}

// UpdateCardPosition stores a card's new coordinates. Callers treat it as fire-and-forget.
func (c *Client) UpdateCardPosition(ctx context.Context, cardID int, x, y float64) (bool, error) {
	const op = "update card position"

	req := updatePositionRequest{CardID: cardID, PositionX: x, PositionY: y}
	if err := validateRequest(req); err != nil {
		return false, err
	}
	var resp envelope
	reqID, err := c.do(ctx, op, http.MethodPost, pathUpdatePosition, nil, req, &resp)
	if err != nil {
		return false, err
	}
	if err := resp.check(op, reqID); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateCardRequest changes only the fields that are set.
type UpdateCardRequest struct {
	CardID   int
	Text     *string
	Color    *string
	Category *model.Category
	Position *model.Position
}

func (c *Client) UpdateCard(ctx context.Context, in UpdateCardRequest) (model.Card, error) {
	const op = "update card"

	req := updateCardRequest{CardID: in.CardID, Color: in.Color}
	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		if text == "" {
			return model.Card{}, &ValidationError{Field: "text", Message: "is required"}
		}
		req.Text = &text
		req.Content = &text
	}
	if in.Category != nil {
		cat := string(*in.Category)
		req.Category = &cat
	}
	if in.Position != nil {
		x, y := in.Position.X, in.Position.Y
		req.PositionX = &x
		req.PositionY = &y
	}
	if err := validateRequest(req); err != nil {
		return model.Card{}, err
	}

	var resp cardResponse
	reqID, err := c.do(ctx, op, http.MethodPost, pathUpdateCard, nil, req, &resp)
	if err != nil {
		return model.Card{}, err
	}
	if err := resp.check(op, reqID); err != nil {
		return model.Card{}, err
	}

	card := model.Card{ID: in.CardID}
	if resp.Card != nil {
		card = resp.Card.toModel()
		if card.ID == 0 {
			card.ID = in.CardID
		}
	}
	return card, nil
}

func (c *Client) DeleteCard(ctx context.Context, cardID int) error {
	const op = "delete card"

	req := cardIDRequest{CardID: cardID}
	if err := validateRequest(req); err != nil {
		return err
	}
	var resp envelope
	reqID, err := c.do(ctx, op, http.MethodPost, pathDeleteCard, nil, req, &resp)
	if err != nil {
		return err
	}
	return resp.check(op, reqID)
}
