package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/icarushq/icarus/internal/app"
	authDomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/config"
)

// RunCreateToken authenticates a user with email and password and issues a
// bearer token for the given operating context. Outputs the token ID and the
// cleartext token in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateToken(ctx context.Context, email, password, contextName, format string, io IOTuple) error {
	container := app.NewContainer(config.Load())
	logger := container.Logger()

	defer closeContainer(container, logger)

	operatingContext, err := authDomain.ParseOperatingContext(contextName)
	if err != nil {
		return fmt.Errorf("invalid context %q (valid options: account, platform): %w", contextName, err)
	}

	useCase, err := container.AuthenticationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize authentication use case: %w", err)
	}

	result, err := useCase.Authenticate(ctx, email, password, operatingContext, authDomain.Device{})
	if err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	if format == "json" {
		outputTokenJSON(result, io.Writer)
	} else {
		outputTokenText(result, io.Writer)
	}

	logger.Info("token created successfully",
		slog.String("auth_token_id", result.AuthTokenID.String()),
		slog.String("user_id", result.UserID.String()),
		slog.String("context", string(result.Context)),
	)

	return nil
}

// RunRevokeToken revokes a bearer token by its ID with an optional reason.
// Revocation is permanent; a revoked token never authenticates again.
//
// Requirements: Database must be migrated and accessible.
func RunRevokeToken(ctx context.Context, tokenID, reason string) error {
	container := app.NewContainer(config.Load())
	logger := container.Logger()

	defer closeContainer(container, logger)

	id, err := uuid.Parse(tokenID)
	if err != nil {
		return fmt.Errorf("invalid token ID %q: %w", tokenID, err)
	}

	var revokeReason *string
	if reason != "" {
		revokeReason = &reason
	}

	useCase, err := container.TokenUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize token use case: %w", err)
	}

	if err := useCase.RevokeToken(ctx, id, revokeReason); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	logger.Info("token revoked successfully", slog.String("auth_token_id", id.String()))
	return nil
}

// outputTokenText outputs the authentication result in human-readable text
// format.
func outputTokenText(result *authDomain.AuthenticationResult, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nToken created successfully!")
	_, _ = fmt.Fprintf(writer, "Token ID: %s\n", result.AuthTokenID.String())
	_, _ = fmt.Fprintf(writer, "Context: %s\n", result.Context)
	_, _ = fmt.Fprintf(writer, "Token: %s\n", result.Token)
	if result.ExpiresAt != nil {
		_, _ = fmt.Fprintf(writer, "Expires at: %s\n", result.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	}
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The token is shown only once. Store it securely.")
}

// outputTokenJSON outputs the authentication result in JSON format for
// machine consumption.
func outputTokenJSON(result *authDomain.AuthenticationResult, writer io.Writer) {
	output := map[string]string{
		"token_id": result.AuthTokenID.String(),
		"user_id":  result.UserID.String(),
		"context":  string(result.Context),
		"token":    result.Token,
	}
	if result.ExpiresAt != nil {
		output["expires_at"] = result.ExpiresAt.Format("2006-01-02T15:04:05Z07:00")
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
