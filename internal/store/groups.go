package store

import (
	"context"
	"fmt"

	"mogger-go/internal/model"
)

// CreateGroup inserts a group with the given permission set.
func (q *Queries) CreateGroup(ctx context.Context, id string, perms []model.Permission) (model.Group, error) {
	encoded, err := model.EncodePermissions(perms)
	if err != nil {
		return model.Group{}, err
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO groups (id, permissions) VALUES (?, ?)`,
		id, encoded,
	)
	if err != nil {
		return model.Group{}, fmt.Errorf("creating group %q: %w", id, err)
	}
	return model.Group{ID: id, Permissions: perms}, nil
}

// GetGroup resolves a group id to its record. The foreign key on users
// should make a miss impossible, but the lookup crosses a storage
// boundary, so absence is still modeled.
func (q *Queries) GetGroup(ctx context.Context, id string) (model.Group, error) {
	var raw string
	err := q.db.QueryRowContext(ctx,
		`SELECT permissions FROM groups WHERE id = ?`, id,
	).Scan(&raw)
	if err != nil {
		return model.Group{}, fmt.Errorf("getting group %q: %w", id, err)
	}
	perms, err := model.DecodePermissions(raw)
	if err != nil {
		return model.Group{}, fmt.Errorf("group %q: %w", id, err)
	}
	return model.Group{ID: id, Permissions: perms}, nil
}

// ListGroups returns all groups.
func (q *Queries) ListGroups(ctx context.Context) ([]model.Group, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, permissions FROM groups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		var g model.Group
		var raw string
		if err := rows.Scan(&g.ID, &raw); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		if g.Permissions, err = model.DecodePermissions(raw); err != nil {
			return nil, fmt.Errorf("group %q: %w", g.ID, err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
