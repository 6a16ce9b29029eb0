package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// ImageVersionRepo implements [domain.ImageVersionRepository] backed by
// SQLite.
type ImageVersionRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

const imageVersionColumns = `id, image_type, version, state, release_tag, created_by, created_at, modified_by, modified_at`

func (r *ImageVersionRepo) Create(ctx context.Context, v domain.ImageVersion) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO image_versions (image_type, version, state, release_tag, created_by, created_at, modified_by, modified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ImageType, v.Version, string(v.State), v.ReleaseTag,
		v.CreatedBy, formatTime(v.CreatedAt), v.ModifiedBy, formatTime(v.ModifiedAt),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return 0, fmt.Errorf("image version %s@%s: %w", v.ImageType, v.Version, domain.ErrAlreadyExists)
		case isForeignKeyViolation(err):
			return 0, fmt.Errorf("image type %q: %w", v.ImageType, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("insert image version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("image version id: %w", err)
	}
	return id, nil
}

func (r *ImageVersionRepo) Get(ctx context.Context, imageType, version string) (domain.ImageVersion, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+imageVersionColumns+` FROM image_versions WHERE image_type = ? AND version = ?`,
		imageType, version,
	)
	v, err := scanImageVersion(row)
	if errors.Is(err, domain.ErrNotFound) {
		return v, fmt.Errorf("image version %s@%s: %w", imageType, version, domain.ErrNotFound)
	}
	return v, err
}

func (r *ImageVersionRepo) List(ctx context.Context, imageType string) ([]domain.ImageVersion, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+imageVersionColumns+` FROM image_versions WHERE image_type = ? ORDER BY created_at, id`,
		imageType,
	)
	if err != nil {
		return nil, fmt.Errorf("list image versions: %w", err)
	}
	return collectImageVersions(rows)
}

func (r *ImageVersionRepo) UpdateState(ctx context.Context, imageType, version string, state domain.VersionState, modifiedBy string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE image_versions SET state = ?, modified_by = ?, modified_at = ?
		 WHERE image_type = ? AND version = ?`,
		string(state), modifiedBy, formatTime(now(r.Now)), imageType, version,
	)
	if err != nil {
		return fmt.Errorf("update image version state: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("image version %s@%s: %w", imageType, version, domain.ErrNotFound)
	}
	return nil
}

// LatestActiveVersions returns, per requested image type, the active
// version with the most recent created_at. Ties go to the highest id.
func (r *ImageVersionRepo) LatestActiveVersions(ctx context.Context, imageTypes []string) ([]domain.ImageVersion, error) {
	if len(imageTypes) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(imageTypes)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+imageVersionColumns+` FROM (
		   SELECT *, ROW_NUMBER() OVER (
		     PARTITION BY image_type ORDER BY created_at DESC, id DESC
		   ) AS rn
		   FROM image_versions
		   WHERE state = 'active' AND image_type IN (`+placeholders+`)
		 ) WHERE rn = 1 ORDER BY image_type`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query latest active versions: %w", err)
	}
	return collectImageVersions(rows)
}

func collectImageVersions(rows *sql.Rows) ([]domain.ImageVersion, error) {
	defer rows.Close()
	var versions []domain.ImageVersion
	for rows.Next() {
		v, err := scanImageVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func scanImageVersion(s scanner) (domain.ImageVersion, error) {
	var v domain.ImageVersion
	var state, createdAt, modifiedAt string
	if err := s.Scan(&v.ID, &v.ImageType, &v.Version, &state, &v.ReleaseTag,
		&v.CreatedBy, &createdAt, &v.ModifiedBy, &modifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return v, fmt.Errorf("%w", domain.ErrNotFound)
		}
		return v, fmt.Errorf("scan image version: %w", err)
	}
	v.State = domain.VersionState(state)
	var err error
	if v.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return v, err
	}
	if v.ModifiedAt, err = parseTime("modified_at", modifiedAt); err != nil {
		return v, err
	}
	return v, nil
}
