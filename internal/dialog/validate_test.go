package dialog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidDate(t *testing.T) {
	v := NewValidator(&fakeStore{}, testLoc, fixedNow)

	tests := []struct {
		date string
		want bool
	}{
		{"2030-06-15", true},
		{"2030-06-16", true},
		{"2031-01-01", true},
		{"2030-06-14", false},
		{"2029-12-31", false},
		{"2030-6-15", false},
		{"06/15/2030", false},
		{"tomorrow", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, v.IsValidDate(tt.date))
		})
	}
}

func TestIsValidDateLateInTheDay(t *testing.T) {
	late := func() time.Time { return fixedNow().Add(13*time.Hour + 59*time.Minute) }
	v := NewValidator(&fakeStore{}, testLoc, late)

	assert.True(t, v.IsValidDate("2030-06-15"))
	assert.False(t, v.IsValidDate("2030-06-14"))
}

func TestIsValidWeekCount(t *testing.T) {
	for n := 1; n <= 52; n++ {
		assert.True(t, IsValidWeekCount(fmt.Sprint(n)), "week count %d", n)
	}
	for _, s := range []string{"0", "53", "-1", "-52", "abc", "1.5", "", "2 weeks"} {
		assert.False(t, IsValidWeekCount(s), "week count %q", s)
	}
}

func TestAddWeeksRoundTrip(t *testing.T) {
	dates := []string{"2030-01-01", "2030-02-28", "2028-02-29", "2030-03-10", "2030-11-03", "2030-12-31"}
	for _, d := range dates {
		for n := 0; n <= 52; n++ {
			forward, err := AddWeeks(d, n, testLoc)
			require.NoError(t, err)
			back, err := AddWeeks(forward, -n, testLoc)
			require.NoError(t, err)
			assert.Equal(t, d, back, "date %s, %d weeks", d, n)
		}
	}
}

func TestAddWeeks(t *testing.T) {
	got, err := AddWeeks("2030-06-22", 2, testLoc)
	require.NoError(t, err)
	assert.Equal(t, "2030-07-06", got)

	_, err = AddWeeks("not-a-date", 1, testLoc)
	assert.Error(t, err)
}

func TestValidateApplyInputs(t *testing.T) {
	ctx := context.Background()
	v := NewValidator(seededStore(), testLoc, fixedNow)

	t.Run("unknown user short-circuits", func(t *testing.T) {
		slots := slotsOf(SlotUserName, "nobody", SlotStartDate, "2000-01-01", SlotNumOfWeeks, "99")
		result, session, err := v.ValidateApplyInputs(ctx, NewSession(nil), slots)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, SlotUserName, result.ViolatedSlot)
		assert.Contains(t, result.Message, "nobody")
		assert.False(t, session.Has(AttrUserName))
	})

	t.Run("start date before week count", func(t *testing.T) {
		slots := slotsOf(SlotUserName, "jdoe", SlotStartDate, "2000-01-01", SlotNumOfWeeks, "99")
		result, session, err := v.ValidateApplyInputs(ctx, NewSession(nil), slots)
		require.NoError(t, err)
		assert.Equal(t, SlotStartDate, result.ViolatedSlot)
		assert.Contains(t, result.Message, "2000-01-01")
		assert.Equal(t, "jdoe", session.Get(AttrUserName))
	})

	t.Run("week count", func(t *testing.T) {
		slots := slotsOf(SlotUserName, "jdoe", SlotStartDate, "2030-07-01", SlotNumOfWeeks, "99")
		result, _, err := v.ValidateApplyInputs(ctx, NewSession(nil), slots)
		require.NoError(t, err)
		assert.Equal(t, SlotNumOfWeeks, result.ViolatedSlot)
		assert.Contains(t, result.Message, "99")
	})

	t.Run("unsupplied slots are not checked", func(t *testing.T) {
		result, session, err := v.ValidateApplyInputs(ctx, NewSession(nil), slotsOf(SlotUserName, "Jdoe"))
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, "Jdoe", session.Get(AttrUserName))
	})

	t.Run("store failure", func(t *testing.T) {
		broken := NewValidator(&fakeStore{listErr: errors.New("disk I/O error")}, testLoc, fixedNow)
		_, _, err := broken.ValidateApplyInputs(ctx, NewSession(nil), slotsOf(SlotUserName, "Jdoe"))
		assert.Error(t, err)
	})
}
