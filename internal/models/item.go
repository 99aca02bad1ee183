package models

import (
	"time"

	"github.com/google/uuid"
)

// Item описывает вещь, выставленную владельцем для одалживания.
type Item struct {
	ID                uuid.UUID `db:"id" json:"id"`
	OwnerID           uuid.UUID `db:"owner_id" json:"owner_id"`
	Title             string    `db:"title" json:"title"`
	Description       string    `db:"description" json:"description"`
	Category          string    `db:"category" json:"category"`
	Location          string    `db:"location" json:"location"`
	Status            string    `db:"status" json:"status"`
	UnlimitedDuration bool      `db:"unlimited_duration" json:"unlimited_duration"`
	DurationDays      *int      `db:"duration_days" json:"duration_days,omitempty"`
	Conditions        *string   `db:"conditions" json:"conditions,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
	// Связанные данные (загружаются отдельно)
	Images    []ItemImage `json:"images,omitempty"`
	OwnerName *string     `db:"owner_name" json:"owner_name,omitempty"`
}

// IsOwnedBy проверяет принадлежность вещи пользователю.
func (i *Item) IsOwnedBy(userID uuid.UUID) bool {
	return i.OwnerID == userID
}

// ItemImage связывает вещь с загруженным файлом изображения.
type ItemImage struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	ItemID    uuid.UUID  `db:"item_id" json:"item_id"`
	MediaID   uuid.UUID  `db:"media_id" json:"media_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Media     *MediaFile `json:"media,omitempty"`
}

// MediaFile описывает загруженный файл в файловом хранилище.
type MediaFile struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FilePath  string     `db:"file_path" json:"file_path"`
	FileType  string     `db:"file_type" json:"file_type"`
	FileSize  int64      `db:"file_size" json:"file_size"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
