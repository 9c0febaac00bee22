package hotels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelfront/internal/domain/shared/validation"
)

func TestFilterByLocation(t *testing.T) {
	list := []Hotel{
		{ID: "1", Location: "Paris, France"},
		{ID: "2", Location: "Rome, Italy"},
		{ID: "3", Location: "paris, Texas"},
	}

	assert.Len(t, FilterByLocation(list, AllLocations), 3)
	assert.Len(t, FilterByLocation(list, ""), 3)

	paris := FilterByLocation(list, "Paris")
	require.Len(t, paris, 2)
	assert.Equal(t, "1", paris[0].ID)
	assert.Equal(t, "3", paris[1].ID)
}

func TestCreateParamsValidate(t *testing.T) {
	err := CreateParams{Name: " ", Description: "d", Location: "Oslo", Price: -1}.Validate()

	ie, ok := validation.AsInputError(err)
	require.True(t, ok)
	fields := ie.Fields()
	assert.Equal(t, []string{"Name is required"}, fields[FieldName])
	assert.Equal(t, []string{"Image is required"}, fields[FieldImage])
	assert.Equal(t, []string{"Price is required"}, fields[FieldPrice])
	assert.NotContains(t, fields, FieldDescription)

	assert.NoError(t, CreateParams{Name: "n", Description: "d", Image: "i", Location: "l"}.Validate())
}

func TestLocationNames(t *testing.T) {
	names := LocationNames([]Location{{ID: "1", Name: "Paris"}, {ID: "2", Name: " "}, {ID: "3", Name: "Rome"}})

	assert.Equal(t, []string{"Paris", "Rome"}, names)
}
