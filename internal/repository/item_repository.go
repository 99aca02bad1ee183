package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mkravchenko/lendit-backend/internal/models"
)

// ItemRepository отвечает за работу с вещами и их изображениями.
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository создаёт новый экземпляр.
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// ItemListParams описывает фильтры списка вещей.
type ItemListParams struct {
	Category string
	Status   string
	OwnerID  *uuid.UUID
	Search   string
	Limit    int
	Offset   int
}

// ItemListResult содержит страницу вещей и общее количество.
type ItemListResult struct {
	Items []models.Item `json:"items"`
	Total int           `json:"total"`
}

// GetByID возвращает вещь по идентификатору.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	query := `
		SELECT i.id, i.owner_id, i.title, i.description, i.category, i.location,
		       i.status, i.unlimited_duration, i.duration_days, i.conditions,
		       i.created_at, i.updated_at, u.display_name AS owner_name
		FROM items i
		JOIN users u ON u.id = i.owner_id
		WHERE i.id = $1
	`
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("item repository: get by id %w", err)
	}

	images, err := r.listImages(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Images = images

	return &item, nil
}

// List возвращает страницу вещей по фильтрам.
func (r *ItemRepository) List(ctx context.Context, params ItemListParams) (*ItemListResult, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if params.Category != "" {
		where += fmt.Sprintf(" AND i.category = $%d", argIndex)
		args = append(args, params.Category)
		argIndex++
	}
	if params.Status != "" {
		where += fmt.Sprintf(" AND i.status = $%d", argIndex)
		args = append(args, params.Status)
		argIndex++
	}
	if params.OwnerID != nil {
		where += fmt.Sprintf(" AND i.owner_id = $%d", argIndex)
		args = append(args, *params.OwnerID)
		argIndex++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (i.title ILIKE $%d OR i.description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM items i`+where, args...); err != nil {
		return nil, fmt.Errorf("item repository: count %w", err)
	}

	query := `
		SELECT i.id, i.owner_id, i.title, i.description, i.category, i.location,
		       i.status, i.unlimited_duration, i.duration_days, i.conditions,
		       i.created_at, i.updated_at, u.display_name AS owner_name
		FROM items i
		JOIN users u ON u.id = i.owner_id
	` + where + fmt.Sprintf(" ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, params.Limit, params.Offset)

	var items []models.Item
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("item repository: list %w", err)
	}

	return &ItemListResult{Items: items, Total: total}, nil
}

// Create сохраняет вещь и привязки изображений в одной транзакции.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item, imageIDs []uuid.UUID) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("item repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO items (owner_id, title, description, category, location, status,
		                   unlimited_duration, duration_days, conditions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	if err = tx.QueryRowxContext(
		ctx,
		query,
		item.OwnerID,
		item.Title,
		item.Description,
		item.Category,
		item.Location,
		item.Status,
		item.UnlimitedDuration,
		item.DurationDays,
		item.Conditions,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("item repository: insert %w", err)
	}

	if len(imageIDs) > 0 {
		imgQuery := `INSERT INTO item_images (item_id, media_id) VALUES `
		imgValues := make([]interface{}, 0, len(imageIDs)*2)
		for i, mediaID := range imageIDs {
			if i > 0 {
				imgQuery += ", "
			}
			imgQuery += fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2)
			imgValues = append(imgValues, item.ID, mediaID)
		}
		imgQuery += " ON CONFLICT DO NOTHING"

		if _, err = tx.ExecContext(ctx, imgQuery, imgValues...); err != nil {
			return fmt.Errorf("item repository: insert images %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("item repository: commit %w", err)
	}
	return nil
}

// Update обновляет описание вещи; привязки изображений пересоздаются.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item, imageIDs []uuid.UUID) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("item repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE items
		SET title = $1, description = $2, category = $3, location = $4,
		    unlimited_duration = $5, duration_days = $6, conditions = $7,
		    updated_at = NOW()
		WHERE id = $8
	`
	result, err := tx.ExecContext(
		ctx,
		query,
		item.Title,
		item.Description,
		item.Category,
		item.Location,
		item.UnlimitedDuration,
		item.DurationDays,
		item.Conditions,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("item repository: update %w", err)
	}
	if rows, raErr := result.RowsAffected(); raErr == nil && rows == 0 {
		err = ErrItemNotFound
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM item_images WHERE item_id = $1`, item.ID); err != nil {
		return fmt.Errorf("item repository: clear images %w", err)
	}
	for _, mediaID := range imageIDs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO item_images (item_id, media_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			item.ID, mediaID,
		); err != nil {
			return fmt.Errorf("item repository: insert image %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("item repository: commit %w", err)
	}
	return nil
}

// UpdateStatus меняет статус вещи (владелец или админ выставляют его вручную).
func (r *ItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE items SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("item repository: update status %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("item repository: update status rows affected %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Delete удаляет вещь. Исторические заявки при этом не трогаются: ссылки на
// удалённую вещь в истории допустимы.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("item repository: delete %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("item repository: delete rows affected %w", err)
	}
	if rows == 0 {
		return ErrItemNotFound
	}
	return nil
}

// HasActiveRequest сообщает, есть ли по вещи активная заявка.
func (r *ItemRepository) HasActiveRequest(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM borrow_requests
		WHERE item_id = $1 AND status IN ($2, $3)
	`
	if err := r.db.GetContext(ctx, &count, query, itemID, models.RequestStatusPending, models.RequestStatusAccepted); err != nil {
		return false, fmt.Errorf("item repository: has active request %w", err)
	}
	return count > 0, nil
}

// listImages загружает изображения вещи вместе с метаданными файлов.
func (r *ItemRepository) listImages(ctx context.Context, itemID uuid.UUID) ([]models.ItemImage, error) {
	query := `
		SELECT
			ii.id,
			ii.item_id,
			ii.media_id,
			ii.created_at,
			mf.id,
			mf.user_id,
			mf.file_path,
			mf.file_type,
			mf.file_size,
			mf.created_at
		FROM item_images ii
		JOIN media_files mf ON mf.id = ii.media_id
		WHERE ii.item_id = $1
		ORDER BY ii.created_at
	`

	rows, err := r.db.QueryxContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("item repository: list images %w", err)
	}
	defer rows.Close()

	var images []models.ItemImage
	for rows.Next() {
		var img models.ItemImage
		var media models.MediaFile
		if err := rows.Scan(
			&img.ID,
			&img.ItemID,
			&img.MediaID,
			&img.CreatedAt,
			&media.ID,
			&media.UserID,
			&media.FilePath,
			&media.FileType,
			&media.FileSize,
			&media.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("item repository: scan image %w", err)
		}
		img.Media = &media
		images = append(images, img)
	}

	return images, nil
}
