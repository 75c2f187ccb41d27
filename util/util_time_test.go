package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDateHyphenFormat(t *testing.T) {
	date, err := ParseDateHyphenFormat("2024-11-08")
	assert.Nil(t, err)
	assert.Equal(t, 2024, date.Year)
	assert.Equal(t, time.November, date.Month)
	assert.Equal(t, 8, date.Day)

	_, err = ParseDateHyphenFormat("08-11-2024")
	assert.NotNil(t, err)
	_, err = ParseDateHyphenFormat("")
	assert.NotNil(t, err)
}

func TestGetDateOnlyHyphenFormatFromTimestampZ(t *testing.T) {
	// 2024-11-08 00:00:00 UTC.
	assert.Equal(t, "2024-11-08", GetDateOnlyHyphenFormatFromTimestampZ(1731024000))
}

func TestEndOfTodayZAfterBeginning(t *testing.T) {
	nowZ := TimeNowZ()
	assert.True(t, EndOfTodayZ().After(nowZ) || EndOfTodayZ().Equal(nowZ))
	assert.True(t, BeginningOfDayZ(nowZ).Before(nowZ) || BeginningOfDayZ(nowZ).Equal(nowZ))
}
