package models

import (
	"time"

	"github.com/google/uuid"
)

// BorrowRequest описывает заявку пользователя на одалживание вещи.
type BorrowRequest struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	ItemID              uuid.UUID  `db:"item_id" json:"item_id"`
	ItemTitle           string     `db:"item_title" json:"item_title"`
	OwnerID             uuid.UUID  `db:"owner_id" json:"owner_id"`
	RequesterID         uuid.UUID  `db:"requester_id" json:"requester_id"`
	Status              string     `db:"status" json:"status"`
	Message             string     `db:"message" json:"message"`
	PickupLocation      string     `db:"pickup_location" json:"pickup_location"`
	PickupDate          *time.Time `db:"pickup_date" json:"pickup_date,omitempty"`
	ConversationID      *uuid.UUID `db:"conversation_id" json:"conversation_id,omitempty"`
	OwnerConfirmed      bool       `db:"owner_confirmed" json:"owner_confirmed"`
	RequesterConfirmed  bool       `db:"requester_confirmed" json:"requester_confirmed"`
	IsUnlimitedDuration bool       `db:"is_unlimited_duration" json:"is_unlimited_duration"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// IsActive сообщает, занимает ли заявка вещь (не отклонена и не завершена).
func (r *BorrowRequest) IsActive() bool {
	return r.Status == RequestStatusPending || r.Status == RequestStatusAccepted
}

// IsParticipant проверяет, что пользователь — одна из сторон заявки.
func (r *BorrowRequest) IsParticipant(userID uuid.UUID) bool {
	return r.OwnerID == userID || r.RequesterID == userID
}

// ReturnRequest описывает заявку на возврат одолженной вещи.
type ReturnRequest struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	RequestID          uuid.UUID  `db:"request_id" json:"request_id"`
	ItemID             uuid.UUID  `db:"item_id" json:"item_id"`
	ItemTitle          string     `db:"item_title" json:"item_title"`
	OwnerID            uuid.UUID  `db:"owner_id" json:"owner_id"`
	RequesterID        uuid.UUID  `db:"requester_id" json:"requester_id"`
	Status             string     `db:"status" json:"status"`
	ReturnLocation     string     `db:"return_location" json:"return_location"`
	ReturnDate         *time.Time `db:"return_date" json:"return_date,omitempty"`
	OwnerConfirmed     bool       `db:"owner_confirmed" json:"owner_confirmed"`
	RequesterConfirmed bool       `db:"requester_confirmed" json:"requester_confirmed"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// IsParticipant проверяет, что пользователь — одна из сторон возврата.
func (r *ReturnRequest) IsParticipant(userID uuid.UUID) bool {
	return r.OwnerID == userID || r.RequesterID == userID
}
