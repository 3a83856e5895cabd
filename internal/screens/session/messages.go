package session

import "github.com/abhisek/oulpan/internal/item"

// itemDeletedMsg is sent when the async store delete of an item finished.
type itemDeletedMsg struct {
	ID  item.ID
	Err error
}
