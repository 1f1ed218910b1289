package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/icarushq/icarus/internal/database"
	"github.com/icarushq/icarus/internal/event"
)

// Hydrator converts between an aggregate and its flat column map.
type Hydrator[T any] interface {
	// Hydrate builds an aggregate from raw column values.
	Hydrate(fields Fields) (T, error)

	// Dehydrate flattens an aggregate into its column values.
	Dehydrate(aggregate T) Fields
}

// GatewayConfig configures a Gateway.
type GatewayConfig struct {
	// Kind is the aggregate type name used to key the caches. Two aggregate
	// types may share identity values, so the kind is part of every key.
	Kind string

	// Table is the storage table for the aggregate.
	Table string

	// Driver selects the SQL placeholder dialect ("postgres" or "mysql").
	Driver string

	DB         *sql.DB
	Work       *UnitOfWork
	Dispatcher event.Dispatcher
	Logger     *slog.Logger

	// Timestamps opts the repository into created_at/updated_at stamping.
	Timestamps bool

	// Now supplies the clock for timestamp stamping. Defaults to UTC now.
	Now func() time.Time
}

// Gateway is the generic repository base. It composes the identity map, the
// snapshot map, the storage querier and the event dispatcher to implement
// create/update with minimal writes and identity-consistent reads.
//
// Create, Update and Save return booleans: a false return means the write
// did not happen and nothing was cached or dispatched. Use cases convert
// that into their own failure contract.
type Gateway[T any] struct {
	kind       string
	table      string
	driver     string
	db         *sql.DB
	work       *UnitOfWork
	dispatcher event.Dispatcher
	logger     *slog.Logger
	timestamps bool
	now        func() time.Time
	hydrator   Hydrator[T]
}

// NewGateway creates a repository base for one aggregate type.
func NewGateway[T any](cfg GatewayConfig, hydrator Hydrator[T]) *Gateway[T] {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Gateway[T]{
		kind:       cfg.Kind,
		table:      cfg.Table,
		driver:     cfg.Driver,
		db:         cfg.DB,
		work:       cfg.Work,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger,
		timestamps: cfg.Timestamps,
		now:        cfg.Now,
		hydrator:   hydrator,
	}
}

// ShouldCreate reports whether the aggregate needs an insert rather than an
// update. The decision is derived purely from snapshot presence; aggregates
// carry no "is new" flag.
func (g *Gateway[T]) ShouldCreate(id string) bool {
	return !g.work.Snapshots.Has(g.kind, id)
}

// Save inserts or updates the aggregate depending on ShouldCreate.
func (g *Gateway[T]) Save(ctx context.Context, id string, aggregate T) bool {
	if g.ShouldCreate(id) {
		return g.Create(ctx, id, aggregate)
	}
	return g.Update(ctx, id, aggregate)
}

// Create dehydrates the aggregate and issues an insert. On success the
// identity and snapshot are cached and any events queued on the aggregate
// are dispatched.
func (g *Gateway[T]) Create(ctx context.Context, id string, aggregate T) bool {
	fields := g.hydrator.Dehydrate(aggregate)

	toInsert := Fields{}
	for column, value := range fields {
		toInsert[column] = value
	}
	if g.timestamps {
		now := g.now()
		toInsert["created_at"] = now
		toInsert["updated_at"] = now
	}

	columns := sortedColumns(toInsert)
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		placeholders[i] = database.Placeholder(g.driver, i+1)
		args[i] = toInsert[column]
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		g.table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	if _, err := database.GetTx(ctx, g.db).ExecContext(ctx, query, args...); err != nil {
		g.logger.Error("insert failed",
			slog.String("kind", g.kind),
			slog.String("id", id),
			slog.Any("error", err))
		return false
	}

	g.handlePostPersist(ctx, id, aggregate, fields, true)
	return true
}

// Update dehydrates the aggregate and writes only the fields that changed
// since the last snapshot. An empty diff is an idempotent no-op returning
// true without touching storage. Zero rows affected is treated as a normal
// persistence failure, indistinguishable from a query error.
func (g *Gateway[T]) Update(ctx context.Context, id string, aggregate T) bool {
	fields := g.hydrator.Dehydrate(aggregate)
	toUpdate := g.work.Snapshots.ToPersist(g.kind, id, fields)

	if len(toUpdate) == 0 {
		return true
	}

	if g.timestamps {
		toUpdate["updated_at"] = g.now()
	}

	columns := sortedColumns(toUpdate)
	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, column := range columns {
		assignments[i] = fmt.Sprintf("%s = %s", column, database.Placeholder(g.driver, i+1))
		args = append(args, toUpdate[column])
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = %s",
		g.table,
		strings.Join(assignments, ", "),
		database.Placeholder(g.driver, len(columns)+1),
	)

	result, err := database.GetTx(ctx, g.db).ExecContext(ctx, query, args...)
	if err != nil {
		g.logger.Error("update failed",
			slog.String("kind", g.kind),
			slog.String("id", id),
			slog.Any("error", err))
		return false
	}

	affected, err := result.RowsAffected()
	if err != nil || affected == 0 {
		g.logger.Error("update affected no rows",
			slog.String("kind", g.kind),
			slog.String("id", id))
		return false
	}

	g.handlePostPersist(ctx, id, aggregate, fields, false)
	return true
}

// Materialize hydrates an aggregate from raw column values and primes both
// caches, so later finds return this exact instance.
func (g *Gateway[T]) Materialize(id string, fields Fields) (T, error) {
	aggregate, err := g.hydrator.Hydrate(fields)
	if err != nil {
		var zero T
		return zero, err
	}

	g.work.Snapshots.Put(g.kind, id, fields)
	g.work.Identities.Put(g.kind, id, aggregate)

	return aggregate, nil
}

// Identity returns the cached live instance for the id, if any.
func (g *Gateway[T]) Identity(id string) (T, bool) {
	instance, ok := g.work.Identities.Get(g.kind, id)
	if !ok {
		var zero T
		return zero, false
	}
	return instance.(T), true
}

// Querier returns the transaction-aware query executor for the context.
func (g *Gateway[T]) Querier(ctx context.Context) database.Querier {
	return database.GetTx(ctx, g.db)
}

func (g *Gateway[T]) handlePostPersist(ctx context.Context, id string, aggregate T, fields Fields, storeIdentity bool) {
	if storeIdentity {
		g.work.Identities.Put(g.kind, id, aggregate)
	}

	g.work.Snapshots.Put(g.kind, id, fields)

	if recorder, ok := any(aggregate).(event.RecordsEvents); ok && g.dispatcher != nil {
		g.dispatcher.DispatchFrom(ctx, recorder)
	}
}

func sortedColumns(fields Fields) []string {
	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
