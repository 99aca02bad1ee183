package dto

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mkravchenko/lendit-backend/internal/models"
)

func TestUserProfileResponse_FromUser(t *testing.T) {
	user := &models.User{
		ID:          uuid.New(),
		Username:    "ivan",
		DisplayName: "Иван",
		IsBanned:    false,
	}

	resp := UserProfileResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Rating:      4.5,
		ReviewCount: 3,
		IsBanned:    user.IsBanned,
	}

	raw, err := json.Marshal(resp)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, user.ID.String(), decoded["id"])
	assert.Equal(t, "Иван", decoded["display_name"])
}
