package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// DispatchRecordRepo implements [domain.DispatchRecordRepository] backed
// by SQLite.
type DispatchRecordRepo struct {
	DB *sql.DB
}

func (r *DispatchRecordRepo) Put(ctx context.Context, rec domain.DispatchRecord) error {
	versions, err := json.Marshal(rec.ImageVersions)
	if err != nil {
		return fmt.Errorf("marshal image versions: %w", err)
	}
	users, err := json.Marshal(rec.ProxyUsers)
	if err != nil {
		return fmt.Errorf("marshal proxy users: %w", err)
	}

	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO dispatch_records (execution_id, flow_name, image_versions, proxy_users, state, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (execution_id) DO UPDATE SET
		   flow_name = excluded.flow_name,
		   image_versions = excluded.image_versions,
		   proxy_users = excluded.proxy_users,
		   state = excluded.state,
		   error = excluded.error,
		   created_at = excluded.created_at`,
		string(rec.ExecutionID), rec.FlowName, string(versions), string(users),
		string(rec.State), rec.Error, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert dispatch record: %w", err)
	}
	return nil
}

func (r *DispatchRecordRepo) Get(ctx context.Context, id domain.ExecutionID) (domain.DispatchRecord, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT execution_id, flow_name, image_versions, proxy_users, state, error, created_at
		 FROM dispatch_records WHERE execution_id = ?`,
		string(id),
	)
	rec, err := scanDispatchRecord(row)
	if errors.Is(err, domain.ErrNotFound) {
		return rec, fmt.Errorf("dispatch record %q: %w", id, domain.ErrNotFound)
	}
	return rec, err
}

func (r *DispatchRecordRepo) ListByFlow(ctx context.Context, flowName string) ([]domain.DispatchRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT execution_id, flow_name, image_versions, proxy_users, state, error, created_at
		 FROM dispatch_records WHERE flow_name = ? ORDER BY created_at, execution_id`,
		flowName,
	)
	if err != nil {
		return nil, fmt.Errorf("list dispatch records: %w", err)
	}
	defer rows.Close()

	var records []domain.DispatchRecord
	for rows.Next() {
		rec, err := scanDispatchRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanDispatchRecord(s scanner) (domain.DispatchRecord, error) {
	var rec domain.DispatchRecord
	var id, versionsJSON, usersJSON, state, createdAt string
	if err := s.Scan(&id, &rec.FlowName, &versionsJSON, &usersJSON, &state, &rec.Error, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, fmt.Errorf("%w", domain.ErrNotFound)
		}
		return rec, fmt.Errorf("scan dispatch record: %w", err)
	}
	rec.ExecutionID = domain.ExecutionID(id)
	rec.State = domain.DispatchState(state)
	if err := json.Unmarshal([]byte(versionsJSON), &rec.ImageVersions); err != nil {
		return rec, fmt.Errorf("unmarshal image versions: %w", err)
	}
	if err := json.Unmarshal([]byte(usersJSON), &rec.ProxyUsers); err != nil {
		return rec, fmt.Errorf("unmarshal proxy users: %w", err)
	}
	var err error
	rec.CreatedAt, err = parseTime("created_at", createdAt)
	return rec, err
}
