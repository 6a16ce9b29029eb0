package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// RampupPlanRepo implements [domain.RampupPlanRepository] backed by
// SQLite. A plan and its entries are always written in one transaction.
type RampupPlanRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

func (r *RampupPlanRepo) Create(ctx context.Context, plan domain.RampupPlan) (domain.PlanID, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if plan.Active {
		if _, err := tx.ExecContext(ctx,
			`UPDATE rampup_plans SET active = 0, modified_by = ?, modified_at = ?
			 WHERE image_type = ? AND active = 1`,
			plan.ModifiedBy, formatTime(plan.ModifiedAt), plan.ImageType,
		); err != nil {
			return 0, fmt.Errorf("deactivate rampup plans: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO rampup_plans (image_type, name, description, active, created_by, created_at, modified_by, modified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ImageType, plan.Name, plan.Description, plan.Active,
		plan.CreatedBy, formatTime(plan.CreatedAt), plan.ModifiedBy, formatTime(plan.ModifiedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("image type %q: %w", plan.ImageType, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("insert rampup plan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("rampup plan id: %w", err)
	}

	if err := insertEntries(ctx, tx, id, plan.Entries); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rampup plan: %w", err)
	}
	return domain.PlanID(id), nil
}

func (r *RampupPlanRepo) UpdateActive(ctx context.Context, imageType string, entries []domain.RampupEntry, modifiedBy string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM rampup_plans WHERE image_type = ? AND active = 1`, imageType,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("active rampup plan for %q: %w", imageType, domain.ErrNotFound)
		}
		return fmt.Errorf("select active rampup plan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rampup_entries WHERE plan_id = ?`, id); err != nil {
		return fmt.Errorf("delete rampup entries: %w", err)
	}
	if err := insertEntries(ctx, tx, id, entries); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE rampup_plans SET modified_by = ?, modified_at = ? WHERE id = ?`,
		modifiedBy, formatTime(now(r.Now)), id,
	); err != nil {
		return fmt.Errorf("update rampup plan: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rampup plan: %w", err)
	}
	return nil
}

func (r *RampupPlanRepo) GetActive(ctx context.Context, imageType string) (domain.RampupPlan, error) {
	plans, err := r.FetchActivePlans(ctx, []string{imageType})
	if err != nil {
		return domain.RampupPlan{}, err
	}
	plan, ok := plans[imageType]
	if !ok {
		return domain.RampupPlan{}, fmt.Errorf("active rampup plan for %q: %w", imageType, domain.ErrNotFound)
	}
	return plan, nil
}

// FetchActivePlans loads the active plans of all requested image types
// and their entries with a single query.
func (r *RampupPlanRepo) FetchActivePlans(ctx context.Context, imageTypes []string) (map[string]domain.RampupPlan, error) {
	plans := make(map[string]domain.RampupPlan)
	if len(imageTypes) == 0 {
		return plans, nil
	}
	placeholders, args := inClause(imageTypes)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.id, p.image_type, p.name, p.description, p.created_by, p.created_at, p.modified_by, p.modified_at,
		        e.version, e.percentage, e.stability_tag, e.created_by, e.modified_by
		 FROM rampup_plans p
		 LEFT JOIN rampup_entries e ON e.plan_id = p.id
		 WHERE p.active = 1 AND p.image_type IN (`+placeholders+`)
		 ORDER BY p.image_type, e.position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query active rampup plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.RampupPlan
		var createdAt, modifiedAt string
		var version, tag, entryCreatedBy, entryModifiedBy sql.NullString
		var pct sql.NullInt64
		if err := rows.Scan(&p.ID, &p.ImageType, &p.Name, &p.Description,
			&p.CreatedBy, &createdAt, &p.ModifiedBy, &modifiedAt,
			&version, &pct, &tag, &entryCreatedBy, &entryModifiedBy); err != nil {
			return nil, fmt.Errorf("scan rampup plan: %w", err)
		}

		existing, seen := plans[p.ImageType]
		if !seen {
			p.Active = true
			if p.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
				return nil, err
			}
			if p.ModifiedAt, err = parseTime("modified_at", modifiedAt); err != nil {
				return nil, err
			}
			existing = p
		}
		if version.Valid {
			existing.Entries = append(existing.Entries, domain.RampupEntry{
				Version:      version.String,
				Percentage:   int(pct.Int64),
				StabilityTag: domain.StabilityTag(tag.String),
				CreatedBy:    entryCreatedBy.String,
				ModifiedBy:   entryModifiedBy.String,
			})
		}
		plans[p.ImageType] = existing
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rampup plans: %w", err)
	}
	return plans, nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, planID int64, entries []domain.RampupEntry) error {
	for i, e := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rampup_entries (plan_id, position, version, percentage, stability_tag, created_by, modified_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			planID, i, e.Version, e.Percentage, string(e.StabilityTag), e.CreatedBy, e.ModifiedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("rampup entry %q: duplicate version: %w", e.Version, domain.ErrInvalidArgument)
			}
			return fmt.Errorf("insert rampup entry: %w", err)
		}
	}
	return nil
}
