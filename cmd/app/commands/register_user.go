package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/icarushq/icarus/internal/app"
	"github.com/icarushq/icarus/internal/config"
	userDomain "github.com/icarushq/icarus/internal/user/domain"
	userUsecase "github.com/icarushq/icarus/internal/user/usecase"
)

// RunRegisterUser registers a new user account. When password is empty the
// command prompts for it interactively. Outputs the created user in either
// text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunRegisterUser(ctx context.Context, name, email, password, format string, io IOTuple) error {
	container := app.NewContainer(config.Load())
	logger := container.Logger()

	defer closeContainer(container, logger)

	logger.Info("registering user", slog.String("email", email))

	if password == "" {
		prompted, err := promptForPassword(io)
		if err != nil {
			return fmt.Errorf("failed to get password: %w", err)
		}
		password = prompted
	}

	useCase, err := container.UserUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize user use case: %w", err)
	}

	user, err := useCase.RegisterUser(ctx, userUsecase.RegisterUserInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	if format == "json" {
		outputUserJSON(user, io.Writer)
	} else {
		outputUserText(user, io.Writer)
	}

	logger.Info("user registered successfully",
		slog.String("user_id", user.ID().String()),
		slog.String("email", user.Email()),
	)

	return nil
}

// promptForPassword reads the password from the command's input stream.
func promptForPassword(io IOTuple) (string, error) {
	reader := bufio.NewReader(io.Reader)

	_, _ = fmt.Fprint(io.Writer, "Enter password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password = strings.TrimSpace(password)
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return password, nil
}

// outputUserText outputs the created user in human-readable text format.
func outputUserText(user *userDomain.User, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nUser registered successfully!")
	_, _ = fmt.Fprintf(writer, "User ID: %s\n", user.ID().String())
	_, _ = fmt.Fprintf(writer, "Name: %s\n", user.Name())
	_, _ = fmt.Fprintf(writer, "Email: %s\n", user.Email())
}

// outputUserJSON outputs the created user in JSON format for machine
// consumption.
func outputUserJSON(user *userDomain.User, writer io.Writer) {
	result := map[string]string{
		"user_id": user.ID().String(),
		"name":    user.Name(),
		"email":   user.Email(),
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
