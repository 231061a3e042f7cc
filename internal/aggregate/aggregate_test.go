package aggregate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/noshow-cli/internal/appointment"
)

func sample() []appointment.Record {
	return []appointment.Record{
		{Age: 62, Gender: "F", NoShow: "No", SMSReceived: 0, Hypertension: 1, Weekday: "Friday"},
		{Age: 56, Gender: "M", NoShow: "No", SMSReceived: 1, Diabetes: 1, Weekday: "Wednesday"},
		{Age: 8, Gender: "F", NoShow: "Yes", SMSReceived: 1, Handicap: 2, Weekday: "Wednesday"},
		{Age: 30, Gender: "F", NoShow: "Yes", SMSReceived: 0, Hypertension: 1, Alcoholism: 1, Weekday: "Monday"},
		{Age: 45, Gender: "M", NoShow: "Yes", SMSReceived: 1, Weekday: "Wednesday"},
	}
}

func TestDistributionByKeepsLevelsAndValues(t *testing.T) {
	d, err := DistributionBy(sample(), appointment.ColNoShow, appointment.ColAge, appointment.OutcomeLevels)
	require.NoError(t, err)
	require.Len(t, d, 2)
	assert.Equal(t, "No", d[0].Group)
	assert.Equal(t, []float64{62, 56}, d[0].Values)
	assert.Equal(t, "Yes", d[1].Group)
	assert.Equal(t, []float64{8, 30, 45}, d[1].Values)
}

func TestDistributionByEmptyPartition(t *testing.T) {
	rows := sample()[:2]
	d, err := DistributionBy(rows, appointment.ColNoShow, appointment.ColAge, appointment.OutcomeLevels)
	require.NoError(t, err)
	require.Len(t, d, 2)
	assert.NotNil(t, d[1].Values)
	assert.Empty(t, d[1].Values)
}

func TestDistributionBy2OuterMajor(t *testing.T) {
	d, err := DistributionBy2(sample(), appointment.ColGender, appointment.ColNoShow, appointment.ColAge,
		appointment.GenderLevels, appointment.OutcomeLevels)
	require.NoError(t, err)
	require.Len(t, d, 4)
	assert.Equal(t, Distribution2{Outer: "F", Inner: "No", Values: []float64{62}}, d[0])
	assert.Equal(t, Distribution2{Outer: "F", Inner: "Yes", Values: []float64{8, 30}}, d[1])
	assert.Equal(t, Distribution2{Outer: "M", Inner: "No", Values: []float64{56}}, d[2])
	assert.Equal(t, Distribution2{Outer: "M", Inner: "Yes", Values: []float64{45}}, d[3])
}

func TestSumByConditions(t *testing.T) {
	s, err := SumBy(sample(), appointment.ColNoShow, appointment.ConditionColumns, appointment.OutcomeLevels)
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, 1.0, s[0].Sum(appointment.ColHypertension))
	assert.Equal(t, 1.0, s[0].Sum(appointment.ColDiabetes))
	assert.Equal(t, 1.0, s[1].Sum(appointment.ColHypertension))
	assert.Equal(t, 1.0, s[1].Sum(appointment.ColAlcoholism))
	// handicap is a 0..4 level, summed as-is
	assert.Equal(t, 2.0, s[1].Sum(appointment.ColHandicap))
	for _, g := range s {
		for _, v := range g.Sums {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestSumByEmptyGroupIsZero(t *testing.T) {
	s, err := SumBy(nil, appointment.ColNoShow, appointment.ConditionColumns, appointment.OutcomeLevels)
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, []float64{0, 0, 0, 0}, s[0].Sums)
}

func TestCountBySMSPartitionsTotal(t *testing.T) {
	rows := sample()
	received, err := CountBy(rows, appointment.ColNoShow, Where(appointment.ColSMSReceived, "1"), appointment.OutcomeLevels)
	require.NoError(t, err)
	notReceived, err := CountBy(rows, appointment.ColNoShow, Where(appointment.ColSMSReceived, "0"), appointment.OutcomeLevels)
	require.NoError(t, err)

	assert.Equal(t, []Count{{"No", 1}, {"Yes", 2}}, received)
	assert.Equal(t, []Count{{"No", 1}, {"Yes", 1}}, notReceived)
	assert.Equal(t, len(rows), Total(received)+Total(notReceived))
}

func TestCountByWeekdaySortedAscending(t *testing.T) {
	c, err := CountBy(sample(), appointment.ColWeekday, All, appointment.WeekdayLevels)
	require.NoError(t, err)
	require.Len(t, c, 7)
	sorted := SortAscending(c)
	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t, sorted[i-1].N, sorted[i].N)
	}
	assert.Equal(t, Count{"Wednesday", 3}, sorted[len(sorted)-1])
	// zero-count days tie and keep calendar order
	assert.Equal(t, "Tuesday", sorted[0].Key)
	// input order untouched
	assert.Equal(t, "Monday", c[0].Key)

	noShows, err := CountBy(sample(), appointment.ColWeekday, Where(appointment.ColNoShow, appointment.NoShowYes), appointment.WeekdayLevels)
	require.NoError(t, err)
	assert.Equal(t, 3, Total(noShows))
	assert.Equal(t, 2, Lookup(noShows, "Wednesday"))
}

func TestUnseenGroupsFollowLevels(t *testing.T) {
	rows := append(sample(), appointment.Record{Gender: "X", NoShow: "Maybe"})
	c, err := CountBy(rows, appointment.ColGender, nil, appointment.GenderLevels)
	require.NoError(t, err)
	assert.Equal(t, []Count{{"F", 3}, {"M", 2}, {"X", 1}}, c)
}

func TestMeanByAmongNoShows(t *testing.T) {
	m, err := MeanBy(sample(), appointment.ColGender, appointment.ColAge, Where(appointment.ColNoShow, appointment.NoShowYes), appointment.GenderLevels)
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Equal(t, Mean{Group: "F", Mean: 19, N: 2}, m[0])
	assert.Equal(t, Mean{Group: "M", Mean: 45, N: 1}, m[1])

	empty, err := MeanBy(nil, appointment.ColGender, appointment.ColAge, nil, appointment.GenderLevels)
	require.NoError(t, err)
	assert.Equal(t, Mean{Group: "F"}, empty[0])
}

func TestNonZero(t *testing.T) {
	c := []Count{{"Monday", 0}, {"Tuesday", 2}, {"Friday", 0}, {"Saturday", 1}}
	assert.Equal(t, []Count{{"Tuesday", 2}, {"Saturday", 1}}, NonZero(c))
	assert.Empty(t, NonZero(nil))
}

func TestShare(t *testing.T) {
	c := []Count{{"No", 1}, {"Yes", 3}}
	assert.InDelta(t, 0.75, Share(c, "Yes"), 1e-9)
	assert.Equal(t, 0.0, Share(c, "Other"))
	assert.Equal(t, 0.0, Share([]Count{{"No", 0}}, "No"))
}

func TestUnknownColumns(t *testing.T) {
	rows := sample()
	_, err := DistributionBy(rows, "patientid", appointment.ColAge, nil)
	assert.True(t, errors.Is(err, ErrUnknownColumn))
	_, err = DistributionBy(rows, appointment.ColNoShow, appointment.ColGender, nil)
	assert.True(t, errors.Is(err, ErrUnknownColumn))
	_, err = SumBy(rows, appointment.ColNoShow, []string{"nope"}, nil)
	assert.True(t, errors.Is(err, ErrUnknownColumn))
	_, err = CountBy(rows, appointment.ColNoShow, Where("nope", "1"), nil)
	assert.True(t, errors.Is(err, ErrUnknownColumn))
}

func TestInputNotMutated(t *testing.T) {
	rows := sample()
	before := append([]appointment.Record(nil), rows...)
	_, _ = DistributionBy(rows, appointment.ColNoShow, appointment.ColAge, appointment.OutcomeLevels)
	_, _ = DistributionBy2(rows, appointment.ColGender, appointment.ColNoShow, appointment.ColAge, nil, nil)
	_, _ = SumBy(rows, appointment.ColNoShow, appointment.ConditionColumns, nil)
	_, _ = CountBy(rows, appointment.ColWeekday, All, appointment.WeekdayLevels)
	_, _ = MeanBy(rows, appointment.ColGender, appointment.ColAge, All, nil)
	assert.Equal(t, before, rows)
}
