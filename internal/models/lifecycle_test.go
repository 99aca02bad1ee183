package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDeliveryConfirmation_FirstPartyPartial(t *testing.T) {
	req := &BorrowRequest{Status: RequestStatusAccepted}

	outcome, err := req.ApplyDeliveryConfirmation(PartyOwner)

	assert.NoError(t, err)
	assert.Equal(t, ConfirmPartial, outcome)
	assert.True(t, req.OwnerConfirmed)
	assert.False(t, req.RequesterConfirmed)
	assert.Equal(t, RequestStatusAccepted, req.Status)
}

func TestApplyDeliveryConfirmation_BothPartiesComplete(t *testing.T) {
	req := &BorrowRequest{Status: RequestStatusAccepted}

	_, err := req.ApplyDeliveryConfirmation(PartyOwner)
	assert.NoError(t, err)

	outcome, err := req.ApplyDeliveryConfirmation(PartyRequester)
	assert.NoError(t, err)
	assert.Equal(t, ConfirmCompleted, outcome)
	assert.Equal(t, RequestStatusCompleted, req.Status)
}

func TestApplyDeliveryConfirmation_RepeatIsNoop(t *testing.T) {
	req := &BorrowRequest{Status: RequestStatusAccepted}

	first, err := req.ApplyDeliveryConfirmation(PartyRequester)
	assert.NoError(t, err)
	assert.Equal(t, ConfirmPartial, first)

	second, err := req.ApplyDeliveryConfirmation(PartyRequester)
	assert.NoError(t, err)
	assert.Equal(t, ConfirmNoop, second)
	assert.Equal(t, RequestStatusAccepted, req.Status)
}

func TestApplyDeliveryConfirmation_OrderDoesNotMatter(t *testing.T) {
	a := &BorrowRequest{Status: RequestStatusAccepted}
	a.ApplyDeliveryConfirmation(PartyOwner)
	outcomeA, _ := a.ApplyDeliveryConfirmation(PartyRequester)

	b := &BorrowRequest{Status: RequestStatusAccepted}
	b.ApplyDeliveryConfirmation(PartyRequester)
	outcomeB, _ := b.ApplyDeliveryConfirmation(PartyOwner)

	assert.Equal(t, ConfirmCompleted, outcomeA)
	assert.Equal(t, ConfirmCompleted, outcomeB)
	assert.Equal(t, RequestStatusCompleted, a.Status)
	assert.Equal(t, RequestStatusCompleted, b.Status)
}

func TestApplyDeliveryConfirmation_RequiresAccepted(t *testing.T) {
	for _, status := range []string{RequestStatusPending, RequestStatusRejected, RequestStatusCompleted} {
		req := &BorrowRequest{Status: status}
		_, err := req.ApplyDeliveryConfirmation(PartyOwner)
		assert.ErrorIs(t, err, ErrConfirmNotAccepted, "status %s", status)
		assert.False(t, req.OwnerConfirmed)
	}
}

func TestApplyDeliveryConfirmation_UnknownParty(t *testing.T) {
	req := &BorrowRequest{Status: RequestStatusAccepted}
	_, err := req.ApplyDeliveryConfirmation(Party("stranger"))
	assert.ErrorIs(t, err, ErrUnknownParty)
}

func TestApplyReturnConfirmation_BothPartiesComplete(t *testing.T) {
	ret := &ReturnRequest{Status: RequestStatusAccepted}

	outcome, err := ret.ApplyReturnConfirmation(PartyRequester)
	assert.NoError(t, err)
	assert.Equal(t, ConfirmPartial, outcome)

	outcome, err = ret.ApplyReturnConfirmation(PartyOwner)
	assert.NoError(t, err)
	assert.Equal(t, ConfirmCompleted, outcome)
	assert.Equal(t, RequestStatusCompleted, ret.Status)
}

func TestApplyReturnConfirmation_RequiresAccepted(t *testing.T) {
	ret := &ReturnRequest{Status: RequestStatusPending}
	_, err := ret.ApplyReturnConfirmation(PartyOwner)
	assert.ErrorIs(t, err, ErrConfirmNotAccepted)
}

func TestCanTransitionRequestStatus(t *testing.T) {
	assert.True(t, CanTransitionRequestStatus(RequestStatusPending, RequestStatusAccepted))
	assert.True(t, CanTransitionRequestStatus(RequestStatusPending, RequestStatusRejected))
	assert.True(t, CanTransitionRequestStatus(RequestStatusAccepted, RequestStatusCompleted))

	assert.False(t, CanTransitionRequestStatus(RequestStatusRejected, RequestStatusAccepted))
	assert.False(t, CanTransitionRequestStatus(RequestStatusCompleted, RequestStatusPending))
	assert.False(t, CanTransitionRequestStatus(RequestStatusPending, RequestStatusCompleted))
}
