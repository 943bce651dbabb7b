package api

import (
	"strings"

	"brainboard/internal/model"
)

// Wire types mirror the backend's JSON exactly; conversion to model types happens here so the
// rest of the client never sees backend field naming.

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type suggestionsRequest struct {
	SessionID     int                  `json:"session_id" validate:"gt=0"`
	Context       model.SessionContext `json:"context"`
	ExistingCards []string             `json:"existing_cards"`
}

type suggestionsResponse struct {
	envelope
	Suggestions []string `json:"suggestions,omitempty"`
}

type addCardRequest struct {
	SessionID int     `json:"session_id" validate:"gt=0"`
	Text      string  `json:"text" validate:"required"`
	Content   string  `json:"content"`
	Color     string  `json:"color" validate:"required,hexcolor"`
	Category  string  `json:"category" validate:"required"`
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
}

type updatePositionRequest struct {
	CardID    int     `json:"card_id" validate:"gt=0"`
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
}

type updateCardRequest struct {
	CardID    int      `json:"card_id" validate:"gt=0"`
	Text      *string  `json:"text,omitempty"`
	Content   *string  `json:"content,omitempty"`
	Color     *string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Category  *string  `json:"category,omitempty"`
	PositionX *float64 `json:"position_x,omitempty"`
	PositionY *float64 `json:"position_y,omitempty"`
}

type cardIDRequest struct {
	CardID int `json:"card_id" validate:"gt=0"`
}

type sessionIDRequest struct {
	SessionID int `json:"session_id" validate:"gt=0"`
}

type createGroupRequest struct {
	SessionID   int    `json:"session_id" validate:"gt=0"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

type cardResponse struct {
	envelope
	Card *wireCard `json:"card,omitempty"`
}

type groupResponse struct {
	envelope
	Group *wireGroup `json:"group,omitempty"`
}

type finishResponse struct {
	envelope
	RedirectURL string `json:"redirect_url,omitempty"`
}

type exportResponse struct {
	envelope
	Data *wireExport `json:"data,omitempty"`
}

type wireCard struct {
	ID        int      `json:"id"`
	Text      string   `json:"text,omitempty"`
	Content   string   `json:"content,omitempty"`
	Category  *string  `json:"category"`
	Color     *string  `json:"color"`
	PositionX *float64 `json:"position_x"`
	PositionY *float64 `json:"position_y"`
}

func (c wireCard) toModel() model.Card {
	text := c.Text
	if strings.TrimSpace(text) == "" {
		text = c.Content
	}
	card := model.Card{ID: c.ID, Text: text}
	if c.Category != nil {
		card.Category = model.Category(*c.Category)
	}
	if c.Color != nil {
		card.Color = *c.Color
	}
	if c.PositionX != nil {
		card.Position.X = *c.PositionX
	}
	if c.PositionY != nil {
		card.Position.Y = *c.PositionY
	}
	return card
}

type wireGroup struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

func (g wireGroup) toModel() model.Group {
	return model.Group{ID: g.ID, Name: g.Name, Description: g.Description, Color: g.Color}
}

type wireSession struct {
	ID          int     `json:"id"`
	Theme       *string `json:"theme"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type wireExport struct {
	Session wireSession `json:"session"`
	Cards   []wireCard  `json:"cards"`
	Groups  []wireGroup `json:"groups"`
}

func (e wireExport) toModel() model.Snapshot {
	snap := model.Snapshot{Session: model.Session{ID: e.Session.ID}}
	if e.Session.Theme != nil {
		snap.Session.Theme = *e.Session.Theme
	}
	if e.Session.Description != nil {
		snap.Session.Description = *e.Session.Description
	}
	if e.Session.Status != nil {
		snap.Session.Status = *e.Session.Status
	}
	snap.Cards = make([]model.Card, 0, len(e.Cards))
	for _, c := range e.Cards {
		snap.Cards = append(snap.Cards, c.toModel())
	}
	for _, g := range e.Groups {
		snap.Groups = append(snap.Groups, g.toModel())
	}
	return snap
}
