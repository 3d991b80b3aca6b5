package validation

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"required,role"`
	Items    []item `json:"items" binding:"dive"`
}

type item struct {
	Kind string `json:"kind" binding:"required,material_kind"`
	Size int64  `json:"size_bytes" binding:"gte=0"`
}

func TestToDetails_ValidationErrors(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(&signup{
		Email:    "nope",
		Password: "short",
		Role:     "admin",
		Items:    []item{{Kind: "torrent", Size: -1}},
	})
	require.Error(t, err)

	d := ToDetails(err)
	assert.Equal(t, "must be a valid email", d["email"])
	assert.Equal(t, "must be between 8 and 72 characters long", d["password"])
	assert.Equal(t, "must be one of: instructor, student", d["role"])
	assert.Equal(t, "must be one of: file, youtube, drive, other", d["items[0].kind"])
	assert.Equal(t, "must be greater than or equal to 0", d["items[0].size_bytes"])
}

func TestToDetails_RoleAcceptsCase(t *testing.T) {
	Init()
	err := binding.Validator.ValidateStruct(&signup{Email: "a@b.co", Password: "password1", Role: "Instructor"})
	assert.NoError(t, err)
}

func TestToDetails_JSONErrors(t *testing.T) {
	var dst struct {
		Price float64 `json:"price"`
	}
	err := json.Unmarshal([]byte(`{"price":"ten"}`), &dst)
	assert.Equal(t, map[string]string{"price": "must be a number"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"price":`), &dst)
	assert.NotNil(t, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}
