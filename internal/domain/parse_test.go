package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBody = `#START7777
# YYMMDDHHMI STN  WD   WS GST  GST  GST     PA     PS PT    PR    TA    TD    HM    PV     RN ...
# KST        ID  16  m/s  WD   WS   TM    hPa    hPa  -   hPa     C     C     %   hPa     mm ...
202401010000 90 16 1.2 -9 -9.0 -9 1020.1 1021.3 -9 -9.0 -2.4 -9.5 58.0 3.0 -9.0 -9.0 -9.0 -9.0 -9.0 -9.0 -9 -9 -9 0 0 -9 -9 -9 -9 -9 2000 -9.0 -9.00 -1.6 -9.0 -9.0 -9.0 -9.0 -9 -9.0 -9 3 3 -9.0
202401010000 108 27 2.0 -9 -9.0 -9 1018.2 1028.0 -9 -9.0 -1.0 -8.9 55.0 3.1 0.5 -9.0 -9.0 -9.0 -9.0 -9.0 -9 -9 -9 5 -9 -9 Sc -9 -9 -9 1500 -9.0 -9.00 -0.4 -9.0 -9.0 -9.0 -9.0 -9 -9.0 -9 3 3 -9.0
#7777END
`

func TestParseObservationLine(t *testing.T) {
	t.Run("full line", func(t *testing.T) {
		line := strings.Split(testBody, "\n")[3]
		o, errs, ok := ParseObservationLine(line)

		require.True(t, ok)
		assert.Empty(t, errs)
		assert.Equal(t, "202401010000", o.Time)
		assert.Equal(t, "90", o.StationID)
		require.NotNil(t, o.AirTemp)
		assert.Equal(t, -2.4, *o.AirTemp)
		require.NotNil(t, o.Humidity)
		assert.Equal(t, 58.0, *o.Humidity)
		require.NotNil(t, o.RainJun)
		assert.Equal(t, -9.0, *o.RainJun, "sentinels survive parsing")
	})

	t.Run("single token is not a reading", func(t *testing.T) {
		_, _, ok := ParseObservationLine("202401010000")
		assert.False(t, ok)
	})

	t.Run("blank line", func(t *testing.T) {
		_, _, ok := ParseObservationLine("   ")
		assert.False(t, ok)
	})

	t.Run("short line pads with null", func(t *testing.T) {
		o, errs, ok := ParseObservationLine("202401010100 90 16 1.2")

		require.True(t, ok)
		assert.Empty(t, errs)
		require.NotNil(t, o.WindSpeed)
		assert.Equal(t, 1.2, *o.WindSpeed)
		assert.Nil(t, o.GustDir)
		assert.Nil(t, o.AirTemp)
		assert.Empty(t, o.Weather)
	})

	t.Run("extra tokens are dropped", func(t *testing.T) {
		tokens := make([]string, 50)
		for i := range tokens {
			tokens[i] = "1"
		}
		tokens[0] = "202401010000"
		o, errs, ok := ParseObservationLine(strings.Join(tokens, " "))

		require.True(t, ok)
		assert.Empty(t, errs)
		require.NotNil(t, o.RainJun)
		assert.Equal(t, 1.0, *o.RainJun)
	})

	t.Run("bad numeric token is null", func(t *testing.T) {
		o, errs, ok := ParseObservationLine("202401010000 90 NA 1.2")

		require.True(t, ok)
		require.Len(t, errs, 1)
		var pe *ParseError
		require.ErrorAs(t, errs[0], &pe)
		assert.Equal(t, "WD", pe.Column)
		assert.Equal(t, "NA", pe.Token)
		assert.Nil(t, o.WindDir)
		require.NotNil(t, o.WindSpeed)
	})

	t.Run("categorical columns keep tokens", func(t *testing.T) {
		line := strings.Split(testBody, "\n")[4]
		o, _, ok := ParseObservationLine(line)

		require.True(t, ok)
		assert.Equal(t, "-9", o.Weather)
		assert.Equal(t, "Sc", o.CloudType)
	})
}

func TestParseObservations(t *testing.T) {
	t.Run("comments dropped", func(t *testing.T) {
		obs, stats, err := ParseObservations(strings.NewReader(testBody))

		require.NoError(t, err)
		require.Len(t, obs, 2)
		assert.Equal(t, "90", obs[0].StationID)
		assert.Equal(t, "108", obs[1].StationID)
		assert.Equal(t, 4, stats.Comments)
		assert.Equal(t, 2, stats.Lines)
		assert.Zero(t, stats.Skipped)
	})

	t.Run("comments only", func(t *testing.T) {
		obs, stats, err := ParseObservations(strings.NewReader("#START7777\n# header\n#7777END\n"))

		require.NoError(t, err)
		assert.Empty(t, obs)
		assert.Equal(t, 3, stats.Comments)
	})

	t.Run("indented comment", func(t *testing.T) {
		obs, _, err := ParseObservations(strings.NewReader("   # note\n202401010000 90 1\n"))

		require.NoError(t, err)
		assert.Len(t, obs, 1)
	})

	t.Run("stray token counted as skipped", func(t *testing.T) {
		obs, stats, err := ParseObservations(strings.NewReader("garbage\n202401010000 90 1\n\n"))

		require.NoError(t, err)
		assert.Len(t, obs, 1)
		assert.Equal(t, 1, stats.Skipped)
	})
}

func TestColumns(t *testing.T) {
	assert.Len(t, Columns, 45)
	names := ColumnNames()
	assert.Equal(t, "TM", names[0])
	assert.Equal(t, "STN", names[1])
	assert.Equal(t, "RN_JUN", names[44])

	numeric := 0
	for _, c := range Columns {
		if c.Kind == KindNumeric {
			numeric++
		}
	}
	assert.Equal(t, 41, numeric)

	c, ok := ColumnByName("TA")
	require.True(t, ok)
	o := Observation{}
	require.NoError(t, c.Set(&o, "12.5"))
	assert.Equal(t, "12.5", c.Format(&o))
	v, ok := c.Float(&o)
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	_, ok = ColumnByName("NOPE")
	assert.False(t, ok)
}

func TestColumnSetRejectsNonFinite(t *testing.T) {
	c, _ := ColumnByName("TA")
	o := Observation{}
	err := c.Set(&o, "NaN")
	require.Error(t, err)
	assert.Nil(t, o.AirTemp)
}
