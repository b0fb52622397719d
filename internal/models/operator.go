package models

// Operator is a game-master account allowed to reset the hunt and read the
// event log. Not related to beacon identity in any way.
type Operator struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // never exposed
}
