package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// ImageTypeRepo implements [domain.ImageTypeRepository] backed by SQLite.
type ImageTypeRepo struct {
	DB *sql.DB
}

func (r *ImageTypeRepo) Create(ctx context.Context, t domain.ImageType) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO image_types (name, description, created_by, created_at) VALUES (?, ?, ?, ?)`,
		t.Name, t.Description, t.CreatedBy, formatTime(t.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("image type %q: %w", t.Name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert image type: %w", err)
	}
	return nil
}

func (r *ImageTypeRepo) Get(ctx context.Context, name string) (domain.ImageType, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT name, description, created_by, created_at FROM image_types WHERE name = ?`,
		name,
	)
	t, err := scanImageType(row)
	if errors.Is(err, domain.ErrNotFound) {
		return t, fmt.Errorf("image type %q: %w", name, domain.ErrNotFound)
	}
	return t, err
}

func (r *ImageTypeRepo) List(ctx context.Context) ([]domain.ImageType, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT name, description, created_by, created_at FROM image_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list image types: %w", err)
	}
	defer rows.Close()

	var types []domain.ImageType
	for rows.Next() {
		t, err := scanImageType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func scanImageType(s scanner) (domain.ImageType, error) {
	var t domain.ImageType
	var createdAt string
	if err := s.Scan(&t.Name, &t.Description, &t.CreatedBy, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, fmt.Errorf("%w", domain.ErrNotFound)
		}
		return t, fmt.Errorf("scan image type: %w", err)
	}
	var err error
	t.CreatedAt, err = parseTime("created_at", createdAt)
	return t, err
}
