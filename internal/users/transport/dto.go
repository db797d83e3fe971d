// Package transport defines the wire DTOs for the users module.
package transport

import (
	"time"

	"github.com/Awarix/Farc-mini-app-auth/internal/users/repository"
)

// UserResponse mirrors the persisted user with its related collections.
type UserResponse struct {
	ID          string           `json:"id"`
	Fid         int64            `json:"fid"`
	Username    string           `json:"username"`
	DisplayName string           `json:"displayName"`
	PfpURL      string           `json:"pfpUrl"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Tickets     []TicketResponse `json:"tickets"`
	Quests      []QuestResponse  `json:"quests"`
}

type TicketResponse struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

type QuestResponse struct {
	ID        string    `json:"id"`
	QuestKey  string    `json:"questKey"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromUser maps the repository entity to its wire representation. Empty
// collections serialize as [] rather than null.
func FromUser(user repository.User) UserResponse {
	tickets := make([]TicketResponse, 0, len(user.Tickets))
	for _, t := range user.Tickets {
		tickets = append(tickets, TicketResponse{
			ID:        t.ID.String(),
			Source:    t.Source,
			CreatedAt: t.CreatedAt,
		})
	}

	quests := make([]QuestResponse, 0, len(user.Quests))
	for _, q := range user.Quests {
		quests = append(quests, QuestResponse{
			ID:        q.ID.String(),
			QuestKey:  q.QuestKey,
			Status:    q.Status,
			CreatedAt: q.CreatedAt,
		})
	}

	return UserResponse{
		ID:          user.ID.String(),
		Fid:         user.Fid,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		PfpURL:      user.PfpURL,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
		Tickets:     tickets,
		Quests:      quests,
	}
}
