// Package repository provides data persistence for roles and the
// role-permission aggregation query behind authorization decisions.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	authdomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/database"
	"github.com/icarushq/icarus/internal/event"
	"github.com/icarushq/icarus/internal/permission/domain"
	"github.com/icarushq/icarus/internal/persistence"

	apperrors "github.com/icarushq/icarus/internal/errors"
)

const roleKind = "role"

// RoleRepository persists role aggregates through the persistence gateway
// and answers the per-user permission aggregation query.
type RoleRepository struct {
	gateway *persistence.Gateway[*domain.Role]
	driver  string
}

// NewRoleRepository creates a RoleRepository bound to one unit of work.
func NewRoleRepository(
	db *sql.DB,
	driver string,
	work *persistence.UnitOfWork,
	dispatcher event.Dispatcher,
	logger *slog.Logger,
) *RoleRepository {
	return &RoleRepository{
		gateway: persistence.NewGateway(persistence.GatewayConfig{
			Kind:       roleKind,
			Table:      "roles",
			Driver:     driver,
			DB:         db,
			Work:       work,
			Dispatcher: dispatcher,
			Logger:     logger,
			Timestamps: true,
		}, roleHydrator{}),
		driver: driver,
	}
}

// Save inserts or updates the role. A false return means the write failed
// and nothing was cached or dispatched.
func (r *RoleRepository) Save(ctx context.Context, role *domain.Role) bool {
	return r.gateway.Save(ctx, role.ID().String(), role)
}

// Find retrieves a role by ID. Within one unit of work repeated finds return
// the same live instance.
func (r *RoleRepository) Find(ctx context.Context, id uuid.UUID) (*domain.Role, error) {
	if role, ok := r.gateway.Identity(id.String()); ok {
		return role, nil
	}

	query := fmt.Sprintf(
		`SELECT id, context, name, description, permissions FROM roles WHERE id = %s`,
		database.Placeholder(r.driver, 1),
	)

	var (
		rowID        string
		contextValue string
		name         string
		description  sql.NullString
		permissions  string
	)

	err := r.gateway.Querier(ctx).QueryRowContext(ctx, query, id.String()).Scan(
		&rowID, &contextValue, &name, &description, &permissions,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}

	fields := persistence.Fields{
		"id":          rowID,
		"context":     contextValue,
		"name":        name,
		"permissions": permissions,
	}
	if description.Valid {
		value := description.String
		fields["description"] = &value
	} else {
		fields["description"] = (*string)(nil)
	}

	return r.gateway.Materialize(rowID, fields)
}

// GetPermissionGrantsForUser merges the permission collections of every role
// the user holds in the context into one grants engine. A user with no roles
// gets empty grants that allow nothing.
func (r *RoleRepository) GetPermissionGrantsForUser(
	ctx context.Context,
	userID uuid.UUID,
	operatingContext authdomain.OperatingContext,
) (*domain.PermissionGrants, error) {
	query := fmt.Sprintf(
		`SELECT roles.id, roles.permissions
		 FROM roles
		 JOIN role_users ON roles.id = role_users.role_id
		 WHERE role_users.user_id = %s AND roles.context = %s`,
		database.Placeholder(r.driver, 1),
		database.Placeholder(r.driver, 2),
	)

	rows, err := r.gateway.Querier(ctx).QueryContext(ctx, query, userID.String(), operatingContext.String())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get permission grants")
	}
	defer rows.Close()

	merged := make(map[string][]string)
	for rows.Next() {
		var (
			rawRoleID   string
			permissions string
		)
		if err := rows.Scan(&rawRoleID, &permissions); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission grants")
		}

		roleID, err := uuid.Parse(rawRoleID)
		if err != nil {
			return nil, apperrors.Wrap(err, "invalid role id")
		}

		extracted, err := domain.ExtractPermissions([]byte(permissions), &roleID)
		if err != nil {
			return nil, err
		}

		for namespace, tokens := range extracted {
			merged[namespace] = append(merged[namespace], tokens...)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permission grants")
	}

	return domain.NewPermissionGrants(merged), nil
}

// AssignToUser links a role to a user.
func (r *RoleRepository) AssignToUser(ctx context.Context, roleID, userID uuid.UUID) error {
	query := fmt.Sprintf(
		`INSERT INTO role_users (role_id, user_id) VALUES (%s, %s)`,
		database.Placeholder(r.driver, 1),
		database.Placeholder(r.driver, 2),
	)

	if _, err := r.gateway.Querier(ctx).ExecContext(ctx, query, roleID.String(), userID.String()); err != nil {
		return apperrors.Wrap(err, "failed to assign role to user")
	}
	return nil
}

// roleHydrator converts between the role aggregate and its column map.
type roleHydrator struct{}

func (roleHydrator) Hydrate(fields persistence.Fields) (*domain.Role, error) {
	id, err := uuid.Parse(fields["id"].(string))
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid role id")
	}
	roleContext, err := authdomain.ParseOperatingContext(fields["context"].(string))
	if err != nil {
		return nil, err
	}

	permissions, err := domain.ExtractPermissions([]byte(fields["permissions"].(string)), &id)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateRole(
		id,
		roleContext,
		fields["name"].(string),
		fields["description"].(*string),
		domain.NewPermissionCollection(permissions),
	), nil
}

func (roleHydrator) Dehydrate(role *domain.Role) persistence.Fields {
	encoded, err := json.Marshal(role.Permissions())
	if err != nil {
		// The collection marshals a string slice; this cannot fail
		panic(err)
	}

	return persistence.Fields{
		"id":          role.ID().String(),
		"context":     role.Context().String(),
		"name":        role.Name(),
		"description": role.Description(),
		"permissions": string(encoded),
	}
}
