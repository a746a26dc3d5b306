package resume

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDates_AllPatterns(t *testing.T) {
	text := "Worked 03/2019 to 15/06/2021\nJoined March 2020\nBSc 2012-2016"

	dates := ExtractDates(text)

	assert.True(t, dates.Contains("03/2019"), "应匹配 MM/YYYY")
	assert.True(t, dates.Contains("15/06/2021"), "应匹配 DD/MM/YYYY")
	assert.True(t, dates.Contains("06/2021"), "MM/YYYY 也会命中 DD/MM/YYYY 的后半段")
	assert.True(t, dates.Contains("March 2020"), "应匹配 Month YYYY")
	assert.True(t, dates.Contains("2012-2016"), "应匹配 YYYY-YYYY")
}

func TestExtractDates_Idempotent(t *testing.T) {
	text := "Experience\n\nJan 2018 - Mar 2020, again Jan 2018\n\n01/2017 01/2017"

	first := ExtractDates(text)
	second := ExtractDates(text)

	assert.Equal(t, first, second, "相同输入的两次提取结果应完全一致")
	assert.ElementsMatch(t, []string{"Jan 2018", "Mar 2020", "01/2017"}, []string(first))
}

func TestExtractDates_ReturnsOriginalTokens(t *testing.T) {
	dates := ExtractDates("Started March 2020")

	require.Len(t, dates, 1)
	assert.Equal(t, "March 2020", dates[0])
	assert.False(t, dates.Contains("03 2020"), "月份转换结果不应出现在返回值中")
	assert.Equal(t, "03 2020", ConvertMonthName("March 2020"))
}

func TestConvertMonthName(t *testing.T) {
	cases := map[string]string{
		"March 2020": "03 2020",
		"Jan 2018":   "01 2018",
		"May 2019":   "05 2019",
		"03/2020":    "03/2020",
	}
	for in, want := range cases {
		assert.Equal(t, want, ConvertMonthName(in), in)
	}
}

func TestSegmentExperience_Scenario(t *testing.T) {
	text := "Experience\n\nLed team 2019\n\nEducation\n\nBSc 2015"

	assert.Equal(t, "Led team 2019", SegmentExperience(text))
}

func TestSegmentExperience_RunsToEndWithoutNextHeading(t *testing.T) {
	text := "John\n\nExperience\n\nAcme 2018\n\nGlobex 2020"

	assert.Equal(t, "Acme 2018, Globex 2020", SegmentExperience(text))
}

func TestSegmentExperience_HeadingMatchIsCaseInsensitive(t *testing.T) {
	text := "Experience\n\nAcme 2018\n\n  SKILLS  \n\nGo"

	assert.Equal(t, "Acme 2018", SegmentExperience(text))
}

func TestSegmentExperience_FallbackToWholeDocument(t *testing.T) {
	for _, heading := range []string{"experience", "Work Experience", "EXPERIENCE"} {
		text := "Jane Doe\n\n" + heading + "\n\nAcme 2018\n\nEducation\n\nBSc 2015"
		want := "Jane Doe\n" + heading + "\nAcme 2018\nEducation\nBSc 2015"
		assert.Equal(t, want, SegmentExperience(text), heading)
	}
}

func TestParseDateToken(t *testing.T) {
	now := time.Date(2024, time.March, 31, 10, 0, 0, 0, time.UTC)

	got, err := ParseDateToken("Feb 2020", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC), got, "缺省日超过当月天数时取月末")

	got, err = ParseDateToken("11/2019", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, time.November, 30, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDateToken("Sept 2019", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, time.September, 30, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDateToken("15/06/2021", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, time.June, 15, 0, 0, 0, 0, time.UTC), got, "日在前的写法交换后解析")

	_, err = ParseDateToken("13/2019", now)
	assert.ErrorIs(t, err, ErrUnparseableDate)

	_, err = ParseDateToken("team 2019", now)
	assert.ErrorIs(t, err, ErrUnparseableDate)

	_, err = ParseDateToken("2012-2016", now)
	assert.ErrorIs(t, err, ErrUnparseableDate)
}

func TestCalendarDelta(t *testing.T) {
	start := time.Date(2020, time.March, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, TenureEstimate{Years: 4, Months: 0}, CalendarDelta(start, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, TenureEstimate{Years: 3, Months: 11}, CalendarDelta(start, time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, TenureEstimate{Years: 0, Months: 1}, CalendarDelta(start, time.Date(2020, time.April, 20, 0, 0, 0, 0, time.UTC)))
}

func TestAggregateTenure_Scenario(t *testing.T) {
	now := time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

	total, skipped := AggregateTenure(DateSet{"March 2020"}, now)

	assert.Empty(t, skipped)
	assert.Equal(t, TenureEstimate{Years: 4, Months: 0}, total)
	assert.Equal(t, "4 years, 0 months", total.String())
}

func TestAggregateTenure_DuplicatesCollapseDistinctTokensSum(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	single, _ := AggregateTenure(ExtractDates("March 2020"), now)
	duplicated, _ := AggregateTenure(ExtractDates("March 2020 and March 2020"), now)
	assert.Equal(t, single, duplicated, "重复片段去重后不应翻倍")

	overlapping, _ := AggregateTenure(DateSet{"March 2020", "03/2020"}, now)
	assert.Equal(t, TenureEstimate{Years: 8, Months: 0}, overlapping, "不同写法的片段各自累加")
}

func TestAggregateTenure_CarriesMonthsAndSkipsBadTokens(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	total, skipped := AggregateTenure(DateSet{"September 2023", "October 2023", "Led 2019"}, now)

	// 6 个月 + 5 个月 = 11 个月，不进位
	assert.Equal(t, TenureEstimate{Years: 0, Months: 11}, total)
	require.Len(t, skipped, 1)
	assert.Equal(t, "Led 2019", skipped[0].Token)
	assert.ErrorIs(t, skipped[0].Err, ErrUnparseableDate)

	total, _ = AggregateTenure(DateSet{"August 2023", "October 2023"}, now)
	assert.Equal(t, TenureEstimate{Years: 1, Months: 0}, total, "7 + 5 个月应进位为 1 年")
}

func TestExtractContact(t *testing.T) {
	text := "Ali Raza\nKhan Lahore Pakistan\nali.raza@example.com | +92-3001234567"

	info := ExtractContact(text)

	require.NotNil(t, info.Name)
	assert.Equal(t, "Ali Raza Khan Lahore", *info.Name)
	require.NotNil(t, info.Email)
	assert.Equal(t, "ali.raza@example.com", *info.Email)
	require.NotNil(t, info.Phone)
	assert.Equal(t, "+92-3001234567", *info.Phone)
	assert.True(t, info.HasContact())
}

func TestExtractContact_EngineerMarker(t *testing.T) {
	info := ExtractContact("Sara Ahmed\nSOFTWARE ENGINEER\n03001234567")

	require.NotNil(t, info.Name)
	assert.Equal(t, "Sara Ahmed", *info.Name)
	require.NotNil(t, info.Phone)
	assert.Equal(t, "03001234567", *info.Phone)
	assert.Nil(t, info.Email)
}

func TestExtractContact_PhoneShapes(t *testing.T) {
	cases := map[string]string{
		"call +92-3001234567 now": "+92-3001234567",
		"call +92300123456 now":   "+92300123456",
		"call +0300-1234567 now":  "+0300-1234567",
		"call 03001234567 now":    "03001234567",
		"call +92 3001234567 now": "+92 3001234567",
	}
	for text, want := range cases {
		info := ExtractContact(text)
		require.NotNil(t, info.Phone, text)
		assert.Equal(t, want, *info.Phone, text)
	}
}

func TestExtractContact_NothingFound(t *testing.T) {
	info := ExtractContact("just one line")

	assert.Nil(t, info.Name)
	assert.Nil(t, info.Email)
	assert.Nil(t, info.Phone)
	assert.False(t, info.HasContact())
}

func TestParseSkillSet(t *testing.T) {
	set := ParseSkillSet(" Python3, Java/C++ , python,")

	assert.Equal(t, []string{"c++", "java", "python"}, set.Sorted())
}

func TestMatchSkills_Scenario(t *testing.T) {
	resumeText := "Experienced with PYTHON and Java services"

	match := MatchSkills(ParseSkillSet("Python, Java/C++"), resumeText, DefaultNormalizer)

	assert.Equal(t, []string{"java", "python"}, match.Matched.Sorted())
	assert.Equal(t, "66.67%", match.Confidence())
	assert.InDelta(t, 66.67, match.ConfidenceValue(), 1e-9)
}

func TestMatchSkills_SubstringContainment(t *testing.T) {
	match := MatchSkills(ParseSkillSet("AI"), "Flew by air", nil)

	assert.Equal(t, "100.0%", match.Confidence(), "子串匹配，不判断词边界")
}

func TestMatchSkills_ZeroConfidence(t *testing.T) {
	match := MatchSkills(ParseSkillSet("Rust, Haskell"), "python only", nil)

	assert.Empty(t, match.Matched)
	assert.Equal(t, ZeroConfidence, match.Confidence())
	assert.Equal(t, ZeroConfidence, MatchSkills(ParseSkillSet(""), "anything", nil).Confidence())
}

// roundedByHand round(m/n*100, 2) 的期望值 {m, n}
var roundedByHand = map[[2]int]float64{
	{1, 1}: 100.0,
	{1, 2}: 50.0, {2, 2}: 100.0,
	{1, 3}: 33.33, {2, 3}: 66.67, {3, 3}: 100.0,
	{1, 4}: 25.0, {2, 4}: 50.0, {3, 4}: 75.0, {4, 4}: 100.0,
	{1, 5}: 20.0, {2, 5}: 40.0, {3, 5}: 60.0, {4, 5}: 80.0, {5, 5}: 100.0,
	{1, 6}: 16.67, {2, 6}: 33.33, {3, 6}: 50.0, {4, 6}: 66.67, {5, 6}: 83.33, {6, 6}: 100.0,
	{1, 7}: 14.29, {2, 7}: 28.57, {3, 7}: 42.86, {4, 7}: 57.14, {5, 7}: 71.43, {6, 7}: 85.71, {7, 7}: 100.0,
}

func TestConfidenceBounds(t *testing.T) {
	skills := []string{"go", "sql", "docker", "redis", "kafka", "linux", "git"}
	for n := 1; n <= len(skills); n++ {
		required := make(SkillSet)
		for _, s := range skills[:n] {
			required[s] = struct{}{}
		}
		for m := 0; m <= n; m++ {
			text := ""
			for _, s := range skills[:m] {
				text += s + " "
			}
			match := MatchSkills(required, text, nil)
			require.Len(t, match.Matched, m)

			v := match.ConfidenceValue()
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
			if m == 0 {
				assert.Equal(t, "0.0%", match.Confidence())
				continue
			}
			assert.Equal(t, roundedByHand[[2]int{m, n}], v, "m=%d n=%d", m, n)
			assert.Equal(t, FormatPercent(roundedByHand[[2]int{m, n}]), match.Confidence())
		}
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "100.0%", FormatPercent(100))
	assert.Equal(t, "50.0%", FormatPercent(50))
	assert.Equal(t, "33.33%", FormatPercent(33.33))
}

func TestNormalizeForMatch(t *testing.T) {
	assert.Equal(t, "python and go developer", DefaultNormalizer.NormalizeForMatch("PYTHON and Go Developer"))
	assert.Equal(t, "", DefaultNormalizer.NormalizeForMatch(""))
}

func TestConfidence_HalfwayRoundsToEvenDigit(t *testing.T) {
	required := make(SkillSet)
	for i := 0; i < 32; i++ {
		required[fmt.Sprintf("skill%c%c", 'a'+i/26, 'a'+i%26)] = struct{}{}
	}

	one := SkillMatch{Required: required, Matched: SkillSet{"skillaa": {}}}
	assert.Equal(t, 3.12, one.ConfidenceValue())
	assert.Equal(t, "3.12%", one.Confidence())

	five := SkillMatch{Required: required, Matched: SkillSet{"skillaa": {}, "skillab": {}, "skillac": {}, "skillad": {}, "skillae": {}}}
	assert.Equal(t, "15.62%", five.Confidence())

	three := SkillMatch{Required: required, Matched: SkillSet{"skillaa": {}, "skillab": {}, "skillac": {}}}
	assert.Equal(t, "9.38%", three.Confidence())
}

func TestAggregateTenure_SeptAbbreviation(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	dates := ExtractDates("Sept 2019 - Present")
	require.Equal(t, DateSet{"Sept 2019"}, dates)

	total, skipped := AggregateTenure(dates, now)
	assert.Empty(t, skipped)
	assert.Equal(t, TenureEstimate{Years: 4, Months: 6}, total)
}

func TestExtractDates_UnicodeMonthName(t *testing.T) {
	dates := ExtractDates("Stage Août 2020")

	assert.True(t, dates.Contains("Août 2020"))
	assert.False(t, dates.Contains("t 2020"))
}

func TestNewContactExtractor(t *testing.T) {
	extractor, err := NewContactExtractor("PK")
	require.NoError(t, err)
	assert.Equal(t, "PK", extractor.Region())

	info := extractor.Extract("Ali Raza\nDeveloper\n+92300123456")
	require.NotNil(t, info.Phone)
	assert.Equal(t, "+92300123456", *info.Phone)

	_, err = NewContactExtractor("US")
	assert.ErrorIs(t, err, ErrUnsupportedRegion)
}
