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

	"github.com/google/uuid"

	"github.com/icarushq/icarus/internal/app"
	"github.com/icarushq/icarus/internal/config"
	permissionDomain "github.com/icarushq/icarus/internal/permission/domain"
	permissionUsecase "github.com/icarushq/icarus/internal/permission/usecase"
)

// RunCreateRole creates a new role with permission grants. Supports both
// interactive mode (when permissionsJSON is empty) and non-interactive mode
// (when permissionsJSON is provided as a namespace-to-permissions map).
// Outputs the role ID in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateRole(
	ctx context.Context,
	contextName, name, description, permissionsJSON, format string,
	io IOTuple,
) error {
	container := app.NewContainer(config.Load())
	logger := container.Logger()

	defer closeContainer(container, logger)

	logger.Info("creating new role", slog.String("name", name), slog.String("context", contextName))

	var permissions map[string][]string
	var err error

	if permissionsJSON == "" {
		permissions, err = promptForPermissions(io)
		if err != nil {
			return fmt.Errorf("failed to get permissions: %w", err)
		}
	} else {
		if err := json.Unmarshal([]byte(permissionsJSON), &permissions); err != nil {
			return fmt.Errorf("failed to parse permissions JSON: %w", err)
		}
	}

	if len(permissions) == 0 {
		return fmt.Errorf("at least one permission grant is required")
	}

	input := &permissionUsecase.CreateRoleInput{
		Context:     contextName,
		Name:        name,
		Permissions: permissions,
	}
	if description != "" {
		input.Description = &description
	}

	useCase, err := container.PermissionUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize permission use case: %w", err)
	}

	role, err := useCase.CreateRole(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	if format == "json" {
		outputRoleJSON(role, io.Writer)
	} else {
		outputRoleText(role, io.Writer)
	}

	logger.Info("role created successfully",
		slog.String("role_id", role.ID().String()),
		slog.String("name", role.Name()),
	)

	return nil
}

// RunAssignRole links an existing role to a user.
//
// Requirements: Database must be migrated and accessible.
func RunAssignRole(ctx context.Context, roleID, userID string) error {
	container := app.NewContainer(config.Load())
	logger := container.Logger()

	defer closeContainer(container, logger)

	parsedRoleID, err := uuid.Parse(roleID)
	if err != nil {
		return fmt.Errorf("invalid role ID %q: %w", roleID, err)
	}
	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", userID, err)
	}

	useCase, err := container.PermissionUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize permission use case: %w", err)
	}

	if err := useCase.AssignRole(ctx, parsedRoleID, parsedUserID); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	logger.Info("role assigned successfully",
		slog.String("role_id", parsedRoleID.String()),
		slog.String("user_id", parsedUserID.String()),
	)

	return nil
}

// promptForPermissions interactively prompts the user to enter permission
// grants. Accepts multiple namespaces until the user declines.
func promptForPermissions(io IOTuple) (map[string][]string, error) {
	reader := bufio.NewReader(io.Reader)
	writer := io.Writer
	permissions := make(map[string][]string)

	_, _ = fmt.Fprintln(writer, "\nEnter permission grants for the role")
	_, _ = fmt.Fprintln(writer, "Permissions may use trailing wildcards (e.g., 'invoices.*' or '*')")
	_, _ = fmt.Fprintln(writer)

	grantNum := 1
	for {
		_, _ = fmt.Fprintf(writer, "Grant #%d\n", grantNum)

		_, _ = fmt.Fprint(writer, "Enter namespace (e.g., 'billing'): ")
		namespace, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read namespace: %w", err)
		}
		namespace = strings.TrimSpace(namespace)

		if namespace == "" {
			return nil, fmt.Errorf("namespace cannot be empty")
		}

		_, _ = fmt.Fprint(writer, "Enter permissions (comma-separated, e.g., 'invoices.view,invoices.*'): ")
		permsInput, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read permissions: %w", err)
		}
		permsInput = strings.TrimSpace(permsInput)

		if permsInput == "" {
			return nil, fmt.Errorf("permissions cannot be empty")
		}

		parsed, err := parsePermissionList(permsInput)
		if err != nil {
			return nil, err
		}
		permissions[namespace] = append(permissions[namespace], parsed...)

		_, _ = fmt.Fprint(writer, "Add another namespace? (y/n): ")
		addAnother, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		addAnother = strings.ToLower(strings.TrimSpace(addAnother))

		if addAnother != "y" && addAnother != "yes" {
			break
		}

		_, _ = fmt.Fprintln(writer)
		grantNum++
	}

	return permissions, nil
}

// parsePermissionList converts a comma-separated string into a slice of
// permission names.
func parsePermissionList(input string) ([]string, error) {
	parts := strings.Split(input, ",")
	permissions := make([]string, 0, len(parts))

	for _, part := range parts {
		permission := strings.TrimSpace(part)
		if permission != "" {
			permissions = append(permissions, permission)
		}
	}

	if len(permissions) == 0 {
		return nil, fmt.Errorf("at least one permission is required")
	}

	return permissions, nil
}

// outputRoleText outputs the created role in human-readable text format.
func outputRoleText(role *permissionDomain.Role, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nRole created successfully!")
	_, _ = fmt.Fprintf(writer, "Role ID: %s\n", role.ID().String())
	_, _ = fmt.Fprintf(writer, "Context: %s\n", role.Context())
	_, _ = fmt.Fprintf(writer, "Name: %s\n", role.Name())
}

// outputRoleJSON outputs the created role in JSON format for machine
// consumption.
func outputRoleJSON(role *permissionDomain.Role, writer io.Writer) {
	result := map[string]string{
		"role_id": role.ID().String(),
		"context": string(role.Context()),
		"name":    role.Name(),
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
