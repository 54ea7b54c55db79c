package specparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecificationBlock(t *testing.T) {
	text := "Catalogue M3BP 315SMC\n" +
		"Overview: 3 pages\n" +
		"Technical specifications\n" +
		"Rated power: 11 kW\n" +
		"Rated speed: 1450\n" +
		"rpm\n" +
		"\n" +
		"Weight: 80 kg"

	records, ok := ParseSpecificationBlock(text, 1, "M3BP 315SMC")
	require.True(t, ok)
	require.Len(t, records, 3)

	assert.Equal(t, "Rated Power", records[0].Parameter)
	assert.Equal(t, "Rated Speed", records[1].Parameter)
	assert.Equal(t, "1450 rpm", records[1].RawValue)
	assert.Equal(t, "rpm", records[1].Unit)
	assert.Equal(t, "Weight", records[2].Parameter)
	for _, r := range records {
		assert.Equal(t, 2, r.SourcePage)
	}
}

func TestParseSpecificationBlock_NoHeading(t *testing.T) {
	records, ok := ParseSpecificationBlock("Voltage: 400V", 0, "X")
	assert.False(t, ok)
	assert.Nil(t, records)
}

func TestSectionMap_LastWins(t *testing.T) {
	records := ParsePage("Voltage: 230 V\nSpeed: 1450 rpm\nVoltage: 400 V", 0, "X")

	assert.Equal(t, map[string]string{
		"Voltage": "400 V",
		"Speed":   "1450 rpm",
	}, SectionMap(records))
}
