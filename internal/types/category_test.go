package types

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input  string
		expect Category
	}{
		{"withdraw", WithdrawDeposit},
		{"AccountOpening", AccountOpening},
		{"3", LoanServices},
		{"inquiry", GeneralInquiry},
	}
	for _, c := range cases {
		got, err := ParseCategory(c.input)
		require.NoError(t, err, c.input)
		assert.Equal(t, c.expect, got)
	}
	_, err := ParseCategory("5")
	require.Error(t, err)
	assert.True(t, errors.IsNotValid(err), err.Error())
}

func TestCategoryIndex(t *testing.T) {
	t.Parallel()

	for i, c := range Categories {
		assert.Equal(t, i, int(c))
		assert.True(t, c.Valid())
		assert.NotEmpty(t, c.Key())
	}
	assert.False(t, Category(CategoryCount).Valid())
	assert.Equal(t, "Category(4)", Category(4).String())
}
