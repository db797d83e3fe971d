package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// User is the persisted mini-app user, keyed externally by fid.
type User struct {
	ID          uuid.UUID
	Fid         int64
	Username    string
	DisplayName string
	PfpURL      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tickets     []Ticket
	Quests      []Quest
}

// Ticket is owned by the raffle subsystem; this module only reads it.
type Ticket struct {
	ID        uuid.UUID
	Source    string
	CreatedAt time.Time
}

// Quest is owned by the quest subsystem; this module only reads it.
type Quest struct {
	ID        uuid.UUID
	QuestKey  string
	Status    string
	CreatedAt time.Time
}

// ProfileAttrs are the display attributes refreshed on every successful
// verification.
type ProfileAttrs struct {
	Username    string
	DisplayName string
	PfpURL      string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, fid, username, display_name, pfp_url, created_at, updated_at`

// upsertProfileQuery creates or refreshes a user in one statement so
// concurrent verifications for the same fid cannot race into duplicate rows
// or lost updates. fid is the conflict target and is never modified.
const upsertProfileQuery = `
	INSERT INTO users (fid, username, display_name, pfp_url)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (fid) DO UPDATE SET
		username = EXCLUDED.username,
		display_name = EXCLUDED.display_name,
		pfp_url = EXCLUDED.pfp_url,
		updated_at = now()
	RETURNING ` + userColumns

// createBareQuery inserts a row with only the fid set. DO NOTHING keeps an
// existing row's profile attributes untouched.
const createBareQuery = `
	INSERT INTO users (fid, username)
	VALUES ($1, $2)
	ON CONFLICT (fid) DO NOTHING
`

const getByFidQuery = `SELECT ` + userColumns + ` FROM users WHERE fid = $1`

// UpsertProfile atomically creates or refreshes the user for fid. A remote
// profile without a username gets the derived fid-<fid> placeholder.
func (r *Repository) UpsertProfile(ctx context.Context, fid int64, attrs ProfileAttrs) (User, error) {
	username := attrs.Username
	if username == "" {
		username = fmt.Sprintf("fid-%d", fid)
	}

	var user User
	err := r.pool.QueryRow(ctx, upsertProfileQuery, fid, username, attrs.DisplayName, attrs.PfpURL).Scan(
		&user.ID,
		&user.Fid,
		&user.Username,
		&user.DisplayName,
		&user.PfpURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// FetchOrCreateBare returns the user for fid, creating a bare row first when
// none exists, and eagerly loads the related collections. Existing rows are
// never modified by this path.
func (r *Repository) FetchOrCreateBare(ctx context.Context, fid int64) (User, error) {
	if _, err := r.pool.Exec(ctx, createBareQuery, fid, fmt.Sprintf("fid-%d", fid)); err != nil {
		return User{}, err
	}

	var user User
	err := r.pool.QueryRow(ctx, getByFidQuery, fid).Scan(
		&user.ID,
		&user.Fid,
		&user.Username,
		&user.DisplayName,
		&user.PfpURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}

	if user.Tickets, err = r.listTickets(ctx, user.ID); err != nil {
		return User{}, err
	}
	if user.Quests, err = r.listQuests(ctx, user.ID); err != nil {
		return User{}, err
	}
	return user, nil
}

func (r *Repository) listTickets(ctx context.Context, userID uuid.UUID) ([]Ticket, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, source, created_at
		FROM tickets WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []Ticket{}
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Source, &t.CreatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *Repository) listQuests(ctx context.Context, userID uuid.UUID) ([]Quest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, quest_key, status, created_at
		FROM quests WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quests := []Quest{}
	for rows.Next() {
		var q Quest
		if err := rows.Scan(&q.ID, &q.QuestKey, &q.Status, &q.CreatedAt); err != nil {
			return nil, err
		}
		quests = append(quests, q)
	}
	return quests, rows.Err()
}
