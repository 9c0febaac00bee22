package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelfront/internal/domain/shared/validation"
)

func day(raw string) time.Time {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		panic(err)
	}
	return t
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	ie, ok := validation.AsInputError(err)
	require.True(t, ok, "expected input error, got %v", err)
	return ie.Fields()
}

func TestValidateRejectsCheckOutNotAfterCheckIn(t *testing.T) {
	today := day("2025-01-01")
	form := Form{CheckIn: day("2025-01-10"), CheckOut: day("2025-01-09")}

	fields := fieldErrors(t, form.Validate(today))

	assert.Equal(t, []string{MsgCheckOutBeforeCheckIn}, fields[FieldCheckOut])
	assert.NotContains(t, fields, FieldCheckIn)
}

func TestValidateRejectsSameDay(t *testing.T) {
	today := day("2025-01-01")
	form := Form{CheckIn: day("2025-01-10"), CheckOut: day("2025-01-10")}

	fields := fieldErrors(t, form.Validate(today))

	assert.Equal(t, []string{MsgCheckOutBeforeCheckIn}, fields[FieldCheckOut])
}

func TestValidateRejectsStaysLongerThanThirtyNights(t *testing.T) {
	today := day("2024-12-01")
	form := Form{CheckIn: day("2025-01-01"), CheckOut: day("2025-02-05")}

	fields := fieldErrors(t, form.Validate(today))

	assert.Equal(t, []string{MsgStayTooLong}, fields[FieldCheckOut])
}

func TestValidateAcceptsExactlyThirtyNights(t *testing.T) {
	today := day("2024-12-01")
	form := Form{CheckIn: day("2025-01-01"), CheckOut: day("2025-01-31")}

	assert.NoError(t, form.Validate(today))
	assert.Equal(t, 30, form.Nights())
}

func TestValidateRejectsCheckInInThePast(t *testing.T) {
	today := day("2025-06-01")
	form := Form{CheckIn: day("2020-01-01"), CheckOut: day("2020-01-02")}

	fields := fieldErrors(t, form.Validate(today))

	assert.Equal(t, []string{MsgCheckInInPast}, fields[FieldCheckIn])
	assert.NotContains(t, fields, FieldCheckOut)
}

func TestValidateComparesCheckInAtDayGranularity(t *testing.T) {
	now := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	form := Form{CheckIn: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), CheckOut: day("2025-03-02")}

	assert.NoError(t, form.Validate(now))
}

func TestValidateReportsEveryFailingRule(t *testing.T) {
	today := day("2025-06-01")
	form := Form{CheckIn: day("2025-05-01"), CheckOut: day("2025-04-20")}

	fields := fieldErrors(t, form.Validate(today))

	assert.Equal(t, []string{MsgCheckOutBeforeCheckIn}, fields[FieldCheckOut])
	assert.Equal(t, []string{MsgCheckInInPast}, fields[FieldCheckIn])
}

func TestValidateRequiresBothDates(t *testing.T) {
	fields := fieldErrors(t, Form{}.Validate(day("2025-01-01")))

	assert.Equal(t, []string{MsgCheckInRequired}, fields[FieldCheckIn])
	assert.Equal(t, []string{MsgCheckOutRequired}, fields[FieldCheckOut])
}

func TestValidatorPassesIffAllRulesHold(t *testing.T) {
	today := day("2025-02-15")
	for offsetIn := -3; offsetIn <= 3; offsetIn++ {
		for length := -2; length <= 33; length++ {
			in := today.AddDate(0, 0, offsetIn)
			out := in.AddDate(0, 0, length)
			form := Form{CheckIn: in, CheckOut: out}
			want := length > 0 && length <= MaxNights && offsetIn >= 0
			assert.Equal(t, want, form.Validate(today) == nil, "in=%s out=%s", in.Format("2006-01-02"), out.Format("2006-01-02"))
		}
	}
}

func TestNights(t *testing.T) {
	assert.Equal(t, 3, Form{CheckIn: day("2025-03-01"), CheckOut: day("2025-03-04")}.Nights())
	assert.Equal(t, 1, Form{CheckIn: day("2025-03-04"), CheckOut: day("2025-03-01")}.Nights())
	assert.Equal(t, 1, Form{CheckIn: day("2025-03-04")}.Nights())
}

func TestNewFormDefaultsToTodayAndTomorrow(t *testing.T) {
	now := time.Date(2025, 7, 14, 16, 30, 0, 0, time.UTC)

	form := NewForm(now)

	assert.Equal(t, day("2025-07-14"), form.CheckIn)
	assert.Equal(t, day("2025-07-15"), form.CheckOut)
	assert.NoError(t, form.Validate(now))
}

func TestMinCheckOut(t *testing.T) {
	today := day("2025-01-05")

	assert.Equal(t, day("2025-01-11"), MinCheckOut(day("2025-01-10"), today))
	assert.Equal(t, today, MinCheckOut(time.Time{}, today))
}

func TestSubmitPackagesRequest(t *testing.T) {
	today := day("2025-02-20")
	form := Form{CheckIn: day("2025-03-01"), CheckOut: day("2025-03-04")}

	req, err := form.Submit("hotel-1", today)

	require.NoError(t, err)
	assert.Equal(t, Request{HotelID: "hotel-1", CheckIn: day("2025-03-01"), CheckOut: day("2025-03-04"), Nights: 3}, req)
}

func TestSubmitBlockedWhileInvalid(t *testing.T) {
	today := day("2025-02-20")
	form := Form{CheckIn: day("2025-03-04"), CheckOut: day("2025-03-01")}

	_, err := form.Submit("", today)

	fields := fieldErrors(t, err)
	assert.Contains(t, fields, FieldCheckOut)
	assert.Equal(t, []string{MsgHotelRequired}, fields[FieldHotelID])
}
