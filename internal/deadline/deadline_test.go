package deadline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculate_OffsetsFromContractDate(t *testing.T) {
	contract := date(2024, 1, 1)
	closing := date(2024, 2, 15)

	for _, txType := range []TransactionType{TransactionTypePurchase, TransactionTypeSale} {
		schedule, err := Calculate(contract, closing, txType)
		require.NoError(t, err)

		for _, m := range Milestones {
			if m == MilestoneClosingDate {
				assert.Equal(t, closing, schedule.Get(m))
				continue
			}
			offset, ok := OffsetDays(txType, m)
			require.True(t, ok)
			assert.Equal(t, contract.AddDate(0, 0, offset), schedule.Get(m), "%s %s", txType, m)
		}
	}
}

func TestCalculate_OptionPeriodEndExample(t *testing.T) {
	schedule, err := Calculate(date(2024, 1, 1), time.Time{}, TransactionTypePurchase)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-08", FormatDate(schedule.OptionPeriodEnd))
	assert.Equal(t, "2024-01-31", FormatDate(schedule.ClosingDate), "defaults to contract + 30")
}

func TestCalculate_NoTimezoneDrift(t *testing.T) {
	loc := time.FixedZone("UTC-10", -10*60*60)
	late := time.Date(2024, 3, 9, 23, 30, 0, 0, loc)

	schedule, err := Calculate(late, time.Time{}, TransactionTypeSale)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-16", FormatDate(schedule.OptionPeriodEnd))
	assert.Equal(t, time.UTC, schedule.OptionPeriodEnd.Location())
}

func TestCalculate_AcrossMonthAndLeapDay(t *testing.T) {
	schedule, err := Calculate(date(2024, 2, 25), time.Time{}, TransactionTypePurchase)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-03", FormatDate(schedule.OptionPeriodEnd))
	assert.Equal(t, "2024-03-17", FormatDate(schedule.FinancingDeadline))
}

func TestCalculate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		contract time.Time
		closing  time.Time
		txType   TransactionType
		want     error
	}{
		{"missing contract date", time.Time{}, time.Time{}, TransactionTypePurchase, ErrMissingContractDate},
		{"unknown type", date(2024, 1, 1), time.Time{}, TransactionType("lease"), ErrInvalidType},
		{"closing before contract", date(2024, 1, 10), date(2024, 1, 9), TransactionTypeSale, ErrClosingBeforeContract},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.contract, tt.closing, tt.txType)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEffective_PrefersOverride(t *testing.T) {
	schedule, err := Calculate(date(2024, 1, 1), time.Time{}, TransactionTypePurchase)
	require.NoError(t, err)

	overrides := Overrides{MilestoneOptionPeriodEnd: date(2024, 2, 1)}

	for i := 0; i < 3; i++ {
		assert.Equal(t, date(2024, 2, 1), Effective(schedule, overrides, MilestoneOptionPeriodEnd))
		assert.Equal(t, schedule.InspectionDate, Effective(schedule, overrides, MilestoneInspectionDate))
	}
	assert.Equal(t, date(2024, 1, 8), schedule.OptionPeriodEnd, "computed value retained")

	effective := EffectiveSchedule(schedule, overrides)
	assert.Equal(t, date(2024, 2, 1), effective.OptionPeriodEnd)
	assert.Equal(t, schedule.ClosingDate, effective.ClosingDate)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 6, DaysBetween(date(2024, 1, 2), date(2024, 1, 8)))
	assert.Equal(t, 0, DaysBetween(date(2024, 1, 8), time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, DaysBetween(date(2024, 1, 9), date(2024, 1, 8)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-05-06")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 5, 6), d)

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("05/06/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
