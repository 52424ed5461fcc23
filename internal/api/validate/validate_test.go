package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	assert.NoError(t, Collect(
		Required("email", "a@b.c"),
		Email("email", "a@b.c"),
		PositiveAmount("amount", decimal.NewFromInt(1)),
	))

	err := Collect(
		Required("email", " "),
		PositiveAmount("amount", decimal.Zero),
	)
	assert.Error(t, err)
	assert.Equal(t, "email: required; amount: must be greater than zero", err.Error())
}

func TestEmail(t *testing.T) {
	assert.Nil(t, Email("email", "user@example.com"))
	for _, bad := range []string{"plain", "@nohost", "trailing@", "sp ace@x.y"} {
		assert.NotNil(t, Email("email", bad), bad)
	}
}

func TestPositiveAmount(t *testing.T) {
	assert.Nil(t, PositiveAmount("amount", decimal.RequireFromString("0.01")))
	assert.NotNil(t, PositiveAmount("amount", decimal.Zero))
	assert.NotNil(t, PositiveAmount("amount", decimal.RequireFromString("-1")))
}
