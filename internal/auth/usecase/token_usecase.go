package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/database"

	apperrors "github.com/icarushq/icarus/internal/errors"
)

// tokenUseCase implements TokenUseCase.
type tokenUseCase struct {
	txManager database.TxManager
	tokenRepo AuthTokenRepository
	now       func() time.Time
}

// NewTokenUseCase creates a TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	txManager database.TxManager,
	tokenRepo AuthTokenRepository,
	now func() time.Time,
) TokenUseCase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &tokenUseCase{
		txManager: txManager,
		tokenRepo: tokenRepo,
		now:       now,
	}
}

// ResolveToken verifies a cleartext bearer string. Every rejection collapses
// into ErrInvalidToken so callers cannot probe which check failed.
func (t *tokenUseCase) ResolveToken(ctx context.Context, bearer string) (*authDomain.AuthContext, error) {
	operatingContext, ok := authDomain.ResolveTokenContext(bearer)
	if !ok {
		return nil, authDomain.ErrInvalidToken
	}

	material, _ := authDomain.StripTokenPrefix(bearer)
	if len(material) <= authDomain.SelectorLength {
		return nil, authDomain.ErrInvalidToken
	}

	selector := material[:authDomain.SelectorLength]
	secret := material[authDomain.SelectorLength:]

	result, err := t.tokenRepo.ResolveBySelector(ctx, selector)
	if err != nil {
		if apperrors.Is(err, authDomain.ErrAuthTokenNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	if !result.Token.Verify(selector, secret) {
		return nil, authDomain.ErrInvalidToken
	}

	if result.Context != operatingContext {
		return nil, authDomain.ErrInvalidToken
	}

	if !result.IsActive(t.now()) {
		return nil, authDomain.ErrInvalidToken
	}

	return &authDomain.AuthContext{
		UserID:      result.UserID,
		AuthTokenID: result.ID,
		Context:     result.Context,
	}, nil
}

// FlagTokenUsage stamps the token's last-used timestamp.
func (t *tokenUseCase) FlagTokenUsage(ctx context.Context, tokenID uuid.UUID) error {
	return t.txManager.WithTx(ctx, func(ctx context.Context) error {
		token, err := t.tokenRepo.Find(ctx, tokenID)
		if err != nil {
			return err
		}

		token.MarkUsed(t.now())

		if !t.tokenRepo.Save(ctx, token) {
			return apperrors.New("unable to flag auth token usage")
		}
		return nil
	})
}

// RevokeToken permanently invalidates the token. Revoking an already revoked
// token refreshes the timestamp and reason but stays revoked.
func (t *tokenUseCase) RevokeToken(ctx context.Context, tokenID uuid.UUID, reason *string) error {
	return t.txManager.WithTx(ctx, func(ctx context.Context) error {
		token, err := t.tokenRepo.Find(ctx, tokenID)
		if err != nil {
			return err
		}

		token.Revoke(t.now(), reason)

		if !t.tokenRepo.Save(ctx, token) {
			return apperrors.New("unable to revoke auth token")
		}
		return nil
	})
}
