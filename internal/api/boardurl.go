package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// BoardURL is a parsed board address such as http://host/brainstorm/?session_id=42.
type BoardURL struct {
	// Base is everything before the /brainstorm segment; the client appends endpoint paths to it.
	Base      string
	SessionID int
}

func (b BoardURL) String() string {
	return fmt.Sprintf("%s/brainstorm/?session_id=%d", b.Base, b.SessionID)
}

// ParseBoardURL extracts the backend root and session id from a board URL. A missing or
// non-numeric session_id is an *InitializationError wrapping ErrSessionIDNotFound.
func ParseBoardURL(raw string) (BoardURL, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return BoardURL{}, &InitializationError{Message: "invalid board URL", Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return BoardURL{}, &InitializationError{Message: fmt.Sprintf("invalid board URL %q", raw)}
	}

	path := strings.TrimRight(u.Path, "/")
	if i := strings.Index(path, "/brainstorm"); i >= 0 {
		path = path[:i]
	}
	base := (&url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host, Path: path}).String()

	idStr := strings.TrimSpace(u.Query().Get("session_id"))
	if idStr == "" {
		return BoardURL{Base: base}, &InitializationError{Err: ErrSessionIDNotFound}
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return BoardURL{Base: base}, &InitializationError{Message: fmt.Sprintf("invalid session_id %q", idStr), Err: ErrSessionIDNotFound}
	}
	return BoardURL{Base: base, SessionID: id}, nil
}
