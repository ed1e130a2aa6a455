package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/radiusdt/nexus-backend/internal/models"
)

const creativeColumns = `
	id::text, asset_id::text, campaign_run, duration::bigint, type,
	filename, file_url, vast_xml, campaign_data, created_at, updated_at`

// PostgresCreativeRepo implements CreativeRepo using PostgreSQL.
type PostgresCreativeRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCreativeRepo(pool *pgxpool.Pool) *PostgresCreativeRepo {
	return &PostgresCreativeRepo{pool: pool}
}

func (r *PostgresCreativeRepo) ListCreatives(ctx context.Context) ([]*models.Creative, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+creativeColumns+`
		FROM creatives ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list creatives: %w", err)
	}
	defer rows.Close()

	var creatives []*models.Creative
	for rows.Next() {
		c, err := scanCreative(rows)
		if err != nil {
			return nil, err
		}
		creatives = append(creatives, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list creatives: %w", err)
	}

	return creatives, nil
}

func (r *PostgresCreativeRepo) FindCreativeByAssetID(ctx context.Context, assetID string) (*models.Creative, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+creativeColumns+`
		FROM creatives WHERE asset_id::text = $1
		ORDER BY created_at DESC LIMIT 1
	`, assetID)

	c, err := scanCreative(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresCreativeRepo) LatestOperationalMetadata(ctx context.Context) (models.Record, error) {
	return r.latestRecord(ctx, "operational_metadata")
}

func (r *PostgresCreativeRepo) LatestScreenConfig(ctx context.Context) (models.Record, error) {
	return r.latestRecord(ctx, "screen_config")
}

// latestRecord selects every column of the newest row of table. The table
// name is never caller-supplied.
func (r *PostgresCreativeRepo) latestRecord(ctx context.Context, table string) (models.Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT * FROM `+table+` ORDER BY created_at DESC LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}

	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}

	rec := make(models.Record, len(row))
	for k, v := range row {
		rec[k] = normalizeValue(v)
	}
	return rec, nil
}

func (r *PostgresCreativeRepo) TouchCreative(ctx context.Context, campaignRun string, patch models.CreativePatch) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE creatives SET updated_at = $1, campaign_data = $2
		WHERE campaign_run = $3
	`, patch.UpdatedAt, patch.CampaignData, campaignRun)
	if err != nil {
		return fmt.Errorf("failed to touch creatives: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("touch %q: %w", campaignRun, ErrNoMatchingCreative)
	}
	return nil
}

func scanCreative(row pgx.Row) (*models.Creative, error) {
	var c models.Creative
	var assetID, campaignRun, assetType, filename, fileURL, vastXML *string
	var duration *int64
	var campaignData []byte
	var updatedAt *time.Time

	if err := row.Scan(
		&c.ID, &assetID, &campaignRun, &duration, &assetType,
		&filename, &fileURL, &vastXML, &campaignData, &c.CreatedAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan creative: %w", err)
	}

	c.AssetID = deref(assetID)
	c.CampaignRun = deref(campaignRun)
	c.Type = models.AssetType(deref(assetType))
	c.Filename = deref(filename)
	c.FileURL = deref(fileURL)
	c.VASTXML = deref(vastXML)
	if duration != nil && *duration > 0 {
		c.Duration = *duration
	}
	if updatedAt != nil {
		c.UpdatedAt = *updatedAt
	}

	// Rows written by older clients may hold non-object campaign data; those
	// are ignored rather than failing the whole listing.
	if len(campaignData) > 0 {
		var data map[string]any
		if err := json.Unmarshal(campaignData, &data); err == nil {
			c.CampaignData = data
		}
	}

	return &c, nil
}

// normalizeValue turns driver-specific values into JSON-friendly ones.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(val).String()
	default:
		return v
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
