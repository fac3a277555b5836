package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/directory/domain"
)

func TestNewListCriteria_Derived(t *testing.T) {
	c, err := domain.NewListCriteria(3, 25, domain.SortByEmail, domain.SortAsc)
	require.NoError(t, err)

	assert.Equal(t, 50, c.Offset())
	assert.Equal(t, 25, c.Limit())
	assert.Equal(t, domain.SortByEmail, c.SortField())
	assert.Equal(t, domain.SortAsc, c.SortOrder())
}

func TestNewListCriteria_Defaults(t *testing.T) {
	c, err := domain.NewListCriteria(1, 10, "", "")
	require.NoError(t, err)

	assert.Equal(t, 0, c.Offset())
	assert.Equal(t, domain.SortByCreatedAt, c.SortField())
	assert.Equal(t, domain.SortDesc, c.SortOrder())

	d := domain.DefaultListCriteria()
	assert.Equal(t, domain.DefaultPageSize, d.Limit())
	assert.Equal(t, 1, d.Page())
}

func TestNewListCriteria_Rejects(t *testing.T) {
	cases := map[string]struct {
		page, size int
		field      domain.SortField
		order      domain.SortOrder
	}{
		"zero page":        {0, 10, "", ""},
		"zero size":        {1, 0, "", ""},
		"above ceiling":    {1, domain.MaxPageSize + 1, "", ""},
		"unknown field":    {1, 10, "password", ""},
		"unknown order":    {1, 10, "", "sideways"},
		"negative page":    {-2, 10, "", ""},
		"negative entries": {1, -5, "", ""},
		"offset overflow":  {math.MaxInt/domain.MaxPageSize + 2, domain.MaxPageSize, "", ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := domain.NewListCriteria(tc.page, tc.size, tc.field, tc.order)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
		})
	}
}

func TestNewListCriteria_AcceptsCeiling(t *testing.T) {
	c, err := domain.NewListCriteria(2, domain.MaxPageSize, domain.SortByUsername, domain.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxPageSize, c.Offset())
}

func TestNewListCriteria_LargestPage(t *testing.T) {
	last := math.MaxInt/10 + 1
	c, err := domain.NewListCriteria(last, 10, "", "")
	require.NoError(t, err)
	assert.Positive(t, c.Offset())

	_, err = domain.NewListCriteria(last+1, 10, "", "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestParseSort_CaseInsensitive(t *testing.T) {
	f, err := domain.ParseSortField("USERNAME")
	require.NoError(t, err)
	assert.Equal(t, domain.SortByUsername, f)

	o, err := domain.ParseSortOrder(" Asc ")
	require.NoError(t, err)
	assert.Equal(t, domain.SortAsc, o)
}
