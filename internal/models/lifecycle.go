package models

import "errors"

// Party обозначает сторону сделки одалживания.
type Party string

const (
	PartyOwner     Party = "owner"
	PartyRequester Party = "requester"
)

// ConfirmOutcome описывает результат применения подтверждения передачи.
type ConfirmOutcome int

const (
	// ConfirmNoop — сторона уже подтверждала раньше, повтор ничего не меняет.
	ConfirmNoop ConfirmOutcome = iota
	// ConfirmPartial — первая из двух сторон подтвердила передачу.
	ConfirmPartial
	// ConfirmCompleted — подтвердили обе стороны, заявка завершена.
	ConfirmCompleted
)

// Ошибки жизненного цикла заявок.
var (
	ErrConfirmNotAccepted = errors.New("подтверждение возможно только для принятой заявки")
	ErrUnknownParty       = errors.New("неизвестная сторона сделки")
)

// requestTransitions задаёт допустимые переходы статусов заявок.
// Завершение (completed) достигается только через подтверждения обеих сторон.
var requestTransitions = map[string][]string{
	RequestStatusPending:   {RequestStatusAccepted, RequestStatusRejected},
	RequestStatusAccepted:  {RequestStatusCompleted},
	RequestStatusRejected:  {},
	RequestStatusCompleted: {},
}

// CanTransitionRequestStatus проверяет допустимость перехода статуса заявки.
func CanTransitionRequestStatus(from, to string) bool {
	for _, allowed := range requestTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ApplyDeliveryConfirmation применяет подтверждение передачи вещи стороной actor.
// Метод чистый по отношению к хранилищу: вызывающая сторона обязана выполнять
// чтение и запись заявки в одной транзакции, иначе гонка двух подтверждений
// может завершить заявку дважды.
func (r *BorrowRequest) ApplyDeliveryConfirmation(actor Party) (ConfirmOutcome, error) {
	if r.Status != RequestStatusAccepted {
		return ConfirmNoop, ErrConfirmNotAccepted
	}

	outcome, err := applyConfirmation(actor, &r.OwnerConfirmed, &r.RequesterConfirmed)
	if err != nil {
		return ConfirmNoop, err
	}
	if outcome == ConfirmCompleted {
		r.Status = RequestStatusCompleted
	}
	return outcome, nil
}

// ApplyReturnConfirmation применяет подтверждение возврата вещи стороной actor.
func (r *ReturnRequest) ApplyReturnConfirmation(actor Party) (ConfirmOutcome, error) {
	if r.Status != RequestStatusAccepted {
		return ConfirmNoop, ErrConfirmNotAccepted
	}

	outcome, err := applyConfirmation(actor, &r.OwnerConfirmed, &r.RequesterConfirmed)
	if err != nil {
		return ConfirmNoop, err
	}
	if outcome == ConfirmCompleted {
		r.Status = RequestStatusCompleted
	}
	return outcome, nil
}

// applyConfirmation выставляет флаг стороны и решает, завершена ли передача.
func applyConfirmation(actor Party, ownerConfirmed, requesterConfirmed *bool) (ConfirmOutcome, error) {
	var mine, other *bool
	switch actor {
	case PartyOwner:
		mine, other = ownerConfirmed, requesterConfirmed
	case PartyRequester:
		mine, other = requesterConfirmed, ownerConfirmed
	default:
		return ConfirmNoop, ErrUnknownParty
	}

	if *mine {
		return ConfirmNoop, nil
	}

	*mine = true
	if *other {
		return ConfirmCompleted, nil
	}
	return ConfirmPartial, nil
}
