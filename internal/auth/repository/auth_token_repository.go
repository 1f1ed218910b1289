// Package repository provides data persistence for auth token aggregates.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/database"
	"github.com/icarushq/icarus/internal/event"
	"github.com/icarushq/icarus/internal/persistence"

	apperrors "github.com/icarushq/icarus/internal/errors"
)

const authTokenKind = "auth_token"

// AuthTokenRepository persists auth token aggregates through the persistence
// gateway. The selector lookup on the hot verification path bypasses full
// hydration and returns a lean read model instead.
type AuthTokenRepository struct {
	gateway *persistence.Gateway[*domain.AuthToken]
	driver  string
}

// NewAuthTokenRepository creates an AuthTokenRepository bound to one unit of
// work.
func NewAuthTokenRepository(
	db *sql.DB,
	driver string,
	work *persistence.UnitOfWork,
	dispatcher event.Dispatcher,
	logger *slog.Logger,
) *AuthTokenRepository {
	return &AuthTokenRepository{
		gateway: persistence.NewGateway(persistence.GatewayConfig{
			Kind:       authTokenKind,
			Table:      "auth_tokens",
			Driver:     driver,
			DB:         db,
			Work:       work,
			Dispatcher: dispatcher,
			Logger:     logger,
			Timestamps: true,
		}, authTokenHydrator{}),
		driver: driver,
	}
}

// Save inserts or updates the token. A false return means the write failed
// and nothing was cached or dispatched.
func (r *AuthTokenRepository) Save(ctx context.Context, token *domain.AuthToken) bool {
	return r.gateway.Save(ctx, token.ID().String(), token)
}

// Find retrieves a token by ID. Within one unit of work repeated finds
// return the same live instance.
func (r *AuthTokenRepository) Find(ctx context.Context, id uuid.UUID) (*domain.AuthToken, error) {
	if token, ok := r.gateway.Identity(id.String()); ok {
		return token, nil
	}

	query := fmt.Sprintf(
		`SELECT id, user_id, selector, secret, context, user_agent, ip, last_used_at, expires_at, revoked_at, revoked_reason
		 FROM auth_tokens WHERE id = %s`,
		database.Placeholder(r.driver, 1),
	)

	var (
		rowID         string
		userID        string
		selector      string
		secret        string
		contextValue  string
		userAgent     sql.NullString
		ip            sql.NullString
		lastUsedAt    sql.NullTime
		expiresAt     sql.NullTime
		revokedAt     sql.NullTime
		revokedReason sql.NullString
	)

	err := r.gateway.Querier(ctx).QueryRowContext(ctx, query, id.String()).Scan(
		&rowID, &userID, &selector, &secret, &contextValue, &userAgent, &ip,
		&lastUsedAt, &expiresAt, &revokedAt, &revokedReason,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuthTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get auth token")
	}

	fields := persistence.Fields{
		"id":             rowID,
		"user_id":        userID,
		"selector":       selector,
		"secret":         secret,
		"context":        contextValue,
		"user_agent":     nullableString(userAgent),
		"ip":             nullableString(ip),
		"last_used_at":   nullableTime(lastUsedAt),
		"expires_at":     nullableTime(expiresAt),
		"revoked_at":     nullableTime(revokedAt),
		"revoked_reason": nullableString(revokedReason),
	}

	return r.gateway.Materialize(rowID, fields)
}

// ResolveBySelector returns the lean read model for the token whose selector
// matches. Storage is always consulted first; if the identity is already
// live in the unit of work the cached aggregate backs the result, so the
// read model reflects in-flight mutations.
func (r *AuthTokenRepository) ResolveBySelector(ctx context.Context, selector string) (*domain.AuthTokenResult, error) {
	query := fmt.Sprintf(
		`SELECT id, user_id, selector, secret, context, expires_at, revoked_at
		 FROM auth_tokens WHERE selector = %s`,
		database.Placeholder(r.driver, 1),
	)

	var (
		rowID        string
		userID       string
		rowSelector  string
		secret       string
		contextValue string
		expiresAt    sql.NullTime
		revokedAt    sql.NullTime
	)

	err := r.gateway.Querier(ctx).QueryRowContext(ctx, query, selector).Scan(
		&rowID, &userID, &rowSelector, &secret, &contextValue, &expiresAt, &revokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuthTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to resolve auth token")
	}

	if token, ok := r.gateway.Identity(rowID); ok {
		return &domain.AuthTokenResult{
			ID:        token.ID(),
			UserID:    token.UserID(),
			Token:     token.Token(),
			Context:   token.Context(),
			ExpiresAt: token.ExpiresAt(),
			RevokedAt: token.RevokedAt(),
		}, nil
	}

	id, err := uuid.Parse(rowID)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid auth token id")
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid auth token user id")
	}
	tokenContext, err := domain.ParseOperatingContext(contextValue)
	if err != nil {
		return nil, err
	}

	return &domain.AuthTokenResult{
		ID:        id,
		UserID:    owner,
		Token:     domain.StoredToken{Selector: rowSelector, Secret: secret},
		Context:   tokenContext,
		ExpiresAt: nullableTime(expiresAt),
		RevokedAt: nullableTime(revokedAt),
	}, nil
}

// authTokenHydrator converts between the auth token aggregate and its column
// map.
type authTokenHydrator struct{}

func (authTokenHydrator) Hydrate(fields persistence.Fields) (*domain.AuthToken, error) {
	id, err := uuid.Parse(fields["id"].(string))
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid auth token id")
	}
	userID, err := uuid.Parse(fields["user_id"].(string))
	if err != nil {
		return nil, apperrors.Wrap(err, "invalid auth token user id")
	}
	tokenContext, err := domain.ParseOperatingContext(fields["context"].(string))
	if err != nil {
		return nil, err
	}

	return domain.RehydrateAuthToken(
		id,
		domain.StoredToken{
			Selector: fields["selector"].(string),
			Secret:   fields["secret"].(string),
		},
		userID,
		tokenContext,
		domain.Device{
			UserAgent: fields["user_agent"].(*string),
			IP:        fields["ip"].(*string),
		},
		fields["last_used_at"].(*time.Time),
		fields["expires_at"].(*time.Time),
		fields["revoked_at"].(*time.Time),
		fields["revoked_reason"].(*string),
	), nil
}

func (authTokenHydrator) Dehydrate(token *domain.AuthToken) persistence.Fields {
	return persistence.Fields{
		"id":             token.ID().String(),
		"user_id":        token.UserID().String(),
		"selector":       token.Token().Selector,
		"secret":         token.Token().Secret,
		"context":        token.Context().String(),
		"user_agent":     token.Device().UserAgent,
		"ip":             token.Device().IP,
		"last_used_at":   token.LastUsedAt(),
		"expires_at":     token.ExpiresAt(),
		"revoked_at":     token.RevokedAt(),
		"revoked_reason": token.RevokedReason(),
	}
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func nullableTime(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}
