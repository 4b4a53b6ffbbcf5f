package loan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awhitwam/whit-lend-sub003/loan"
)

func TestDateOf_StripsTimeOfDay(t *testing.T) {
	// Dates compare at day granularity; time of day is never significant.
	morning := time.Date(2024, time.March, 10, 8, 30, 0, 0, time.UTC)
	evening := time.Date(2024, time.March, 10, 23, 59, 59, 0, time.UTC)

	assert.True(t, loan.DateOf(morning).Equal(loan.DateOf(evening)))
}

func TestParseDate(t *testing.T) {
	d, err := loan.ParseDate("2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, loan.NewDate(2024, time.January, 31), d)

	_, err = loan.ParseDate("31/01/2024")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	jan1 := loan.NewDate(2024, time.January, 1)

	assert.Equal(t, 30, loan.DaysBetween(jan1, loan.NewDate(2024, time.January, 31)))
	assert.Equal(t, 0, loan.DaysBetween(jan1, jan1))
	assert.Equal(t, -5, loan.DaysBetween(jan1, loan.NewDate(2023, time.December, 27)))
	// 2024 is a leap year; ACT day counts see the real calendar
	assert.Equal(t, 366, loan.DaysBetween(jan1, loan.NewDate(2025, time.January, 1)))
}

func TestAddPeriods(t *testing.T) {
	jan31 := loan.NewDate(2024, time.January, 31)

	assert.Equal(t, loan.NewDate(2024, time.February, 7), jan31.AddPeriods(loan.PeriodWeekly, 1))
	// Month arithmetic normalizes: Jan 31 + 1 month = Mar 2 (2024 is a leap year)
	assert.Equal(t, loan.NewDate(2024, time.March, 2), jan31.AddPeriods(loan.PeriodMonthly, 1))
}

func TestDateString(t *testing.T) {
	assert.Equal(t, "2024-01-05", loan.NewDate(2024, time.January, 5).String())
}
