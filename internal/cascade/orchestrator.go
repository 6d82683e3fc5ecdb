// Package cascade deletes parent entities together with their dependent rows.
// Child deletions run first, each inside its own savepoint so one failure is
// logged and skipped; the parent-row delete is the hard step, and the whole
// cascade commits or rolls back as one transaction.
package cascade

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"memberhub/pkg/middleware"
)

var (
	// ErrNotFound means the parent row did not exist (or was already gone).
	ErrNotFound = errors.New("entity not found")
	// ErrUnknownKind rejects kinds outside the deletable allowlist.
	ErrUnknownKind = errors.New("unknown entity kind")
)

// Orchestrator executes cascading deletes for the fixed parent kinds and
// plain single-row deletes for the remaining allowlisted kinds.
type Orchestrator struct {
	db        DB
	log       *zap.SugaredLogger
	plainKind map[string]string // kind -> table, no dependents
}

func NewOrchestrator(db DB, log *zap.SugaredLogger, plainKinds map[string]string) *Orchestrator {
	if plainKinds == nil {
		plainKinds = map[string]string{}
	}
	return &Orchestrator{db: db, log: log, plainKind: plainKinds}
}

// Delete removes the entity and, for cascade kinds, its dependents first.
// Child-step failures are soft: logged, rolled back to their savepoint and
// skipped. A parent-row failure (or zero rows) is returned to the caller.
// The parent delete is guarded by the request tenant's id, so an id owned by
// another tenant matches nothing; child steps key off the parent id alone,
// and the failed parent delete rolls them back with the transaction.
func (o *Orchestrator) Delete(ctx context.Context, kind, id string) error {
	r, cascade := rules[kind]
	table := r.table
	if !cascade {
		t, ok := o.plainKind[kind]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
		}
		table = t
	}

	tx, err := o.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, st := range r.steps {
		if err := o.runStep(ctx, tx, st, id); err != nil {
			o.log.Warnw("cascade step failed, continuing", "kind", kind, "id", id, "step", st.name, "err", err)
		}
	}

	tenantID := middleware.TenantFrom(ctx).ID
	n, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE id=$1 AND tenant_id=$2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return tx.Commit(ctx)
}

// runStep executes one child deletion inside a savepoint so its failure
// cannot poison the enclosing transaction.
func (o *Orchestrator) runStep(ctx context.Context, tx Tx, st step, id string) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	if err := st.run(ctx, sp, id); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

// CascadeKinds reports the kinds with dependent-deletion rules.
func CascadeKinds() []string {
	out := make([]string, 0, len(rules))
	for k := range rules {
		out = append(out, k)
	}
	return out
}
