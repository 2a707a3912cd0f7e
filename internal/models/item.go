package models

import "time"

// Item is a to-do entry owned by exactly one account.
type Item struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemPatch lists the only fields an owner may change. Nil means "leave as is".
type ItemPatch struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// Empty reports whether the patch changes nothing.
func (p ItemPatch) Empty() bool {
	return p.Text == nil && p.Completed == nil
}
