// README: Travel group and membership records.
package group

import (
	"time"

	"tripmate/internal/types"
)

type Group struct {
	ID        types.ID
	Name      string
	CreatorID types.ID
	CreatedAt time.Time
}

type Member struct {
	GroupID  types.ID
	UserID   types.ID
	JoinedAt time.Time
}
