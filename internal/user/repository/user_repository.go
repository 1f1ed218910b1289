// Package repository provides data persistence for user aggregates.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	authdomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/database"
	"github.com/icarushq/icarus/internal/event"
	"github.com/icarushq/icarus/internal/persistence"
	"github.com/icarushq/icarus/internal/user/domain"

	apperrors "github.com/icarushq/icarus/internal/errors"
)

const userKind = "user"

// UserRepository persists user aggregates through the persistence gateway,
// giving identity-consistent reads and diff-based writes.
type UserRepository struct {
	gateway *persistence.Gateway[*domain.User]
	driver  string
}

// NewUserRepository creates a UserRepository bound to one unit of work.
func NewUserRepository(
	db *sql.DB,
	driver string,
	work *persistence.UnitOfWork,
	dispatcher event.Dispatcher,
	logger *slog.Logger,
) *UserRepository {
	return &UserRepository{
		gateway: persistence.NewGateway(persistence.GatewayConfig{
			Kind:       userKind,
			Table:      "users",
			Driver:     driver,
			DB:         db,
			Work:       work,
			Dispatcher: dispatcher,
			Logger:     logger,
			Timestamps: true,
		}, userHydrator{}),
		driver: driver,
	}
}

// Save inserts or updates the user. A false return means the write failed
// and nothing was cached or dispatched.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) bool {
	return r.gateway.Save(ctx, user.ID().String(), user)
}

// Find retrieves a user by ID. Within one unit of work repeated finds return
// the same live instance.
func (r *UserRepository) Find(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if user, ok := r.gateway.Identity(id.String()); ok {
		return user, nil
	}

	fields, err := r.queryOne(ctx, "id", id.String())
	if err != nil {
		return nil, err
	}

	return r.gateway.Materialize(id.String(), fields)
}

// FindByEmail retrieves a user by email. Storage is consulted first to learn
// the identity; if that identity is already live in the unit of work, the
// cached instance is returned unchanged.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	fields, err := r.queryOne(ctx, "email", email)
	if err != nil {
		return nil, err
	}

	id := fields["id"].(string)
	if user, ok := r.gateway.Identity(id); ok {
		return user, nil
	}

	return r.gateway.Materialize(id, fields)
}

func (r *UserRepository) queryOne(ctx context.Context, column, value string) (persistence.Fields, error) {
	query := fmt.Sprintf(
		`SELECT id, name, email, email_verified_at, password, active, operates_in FROM users WHERE %s = %s`,
		column,
		database.Placeholder(r.driver, 1),
	)

	var (
		id              string
		name            string
		email           string
		emailVerifiedAt sql.NullTime
		password        string
		active          bool
		operatesIn      string
	)

	err := r.gateway.Querier(ctx).QueryRowContext(ctx, query, value).Scan(
		&id, &name, &email, &emailVerifiedAt, &password, &active, &operatesIn,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	fields := persistence.Fields{
		"id":          id,
		"name":        name,
		"email":       email,
		"password":    password,
		"active":      active,
		"operates_in": operatesIn,
	}
	if emailVerifiedAt.Valid {
		verifiedAt := emailVerifiedAt.Time
		fields["email_verified_at"] = &verifiedAt
	} else {
		fields["email_verified_at"] = (*time.Time)(nil)
	}

	return fields, nil
}

// userHydrator converts between the user aggregate and its column map.
type userHydrator struct{}

func (userHydrator) Hydrate(fields persistence.Fields) (*domain.User, error) {
	id, err := uuid.Parse(fields["id"].(string))
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid user id")
	}

	var rawContexts []string
	if err := json.Unmarshal([]byte(fields["operates_in"].(string)), &rawContexts); err != nil {
		return nil, apperrors.Wrap(err, "invalid operates_in value")
	}

	operatesIn := make([]authdomain.OperatingContext, 0, len(rawContexts))
	for _, raw := range rawContexts {
		context, err := authdomain.ParseOperatingContext(raw)
		if err != nil {
			return nil, err
		}
		operatesIn = append(operatesIn, context)
	}

	return domain.RehydrateUser(
		id,
		fields["name"].(string),
		fields["email"].(string),
		fields["email_verified_at"].(*time.Time),
		fields["password"].(string),
		fields["active"].(bool),
		operatesIn,
	), nil
}

func (userHydrator) Dehydrate(user *domain.User) persistence.Fields {
	return persistence.Fields{
		"id":                user.ID().String(),
		"name":              user.Name(),
		"email":             user.Email(),
		"email_verified_at": user.EmailVerifiedAt(),
		"password":          user.Password(),
		"active":            user.IsActive(),
		"operates_in":       encodeContexts(user.OperatesIn()),
	}
}

func encodeContexts(contexts []authdomain.OperatingContext) string {
	values := make([]string, len(contexts))
	for i, context := range contexts {
		values[i] = context.String()
	}

	encoded, err := json.Marshal(values)
	if err != nil {
		// A string slice always marshals
		panic(err)
	}
	return string(encoded)
}

// IsUniqueViolation reports whether the error is a unique constraint
// violation from either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "duplicate key") ||
		strings.Contains(message, "unique constraint") ||
		strings.Contains(message, "duplicate entry")
}
