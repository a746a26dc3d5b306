package resume

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrUnparseableDate 日期片段无法解析为具体日期
var ErrUnparseableDate = errors.New("无法解析的日期片段")

var (
	monthYearRe    = regexp.MustCompile(`^(\p{L}+) (\d{4})$`)
	numericMonthRe = regexp.MustCompile(`^(\d{2})/(\d{4})$`)
	dayMonthYearRe = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	yearRangeRe    = regexp.MustCompile(`^\d{4}-\d{4}$`)
)

// TenureEstimate 累计工作年限
type TenureEstimate struct {
	Years  int
	Months int
}

// String 格式化为 "<years> years, <months> months"
func (t TenureEstimate) String() string {
	return fmt.Sprintf("%d years, %d months", t.Years, t.Months)
}

// Add 逐项相加，月份绝对值超过 11 时进位到年份
func (t TenureEstimate) Add(other TenureEstimate) TenureEstimate {
	sum := TenureEstimate{Years: t.Years + other.Years, Months: t.Months + other.Months}
	if sum.Months > 11 || sum.Months < -11 {
		sum.Years += sum.Months / 12
		sum.Months = sum.Months % 12
	}
	return sum
}

// SkippedDate 聚合过程中被跳过的日期片段
type SkippedDate struct {
	Token string
	Err   error
}

// ParseDateToken 将单个日期片段解析为起始日期，缺失的字段取 now 的对应值。
func ParseDateToken(token string, now time.Time) (time.Time, error) {
	token = strings.TrimSpace(token)

	if m := monthYearRe.FindStringSubmatch(token); m != nil {
		if month, ok := lookupMonth(m[1]); ok {
			year, _ := strconv.Atoi(m[2])
			return dateWithDefaultDay(year, month, now), nil
		}
	}

	// 年份区间没有月份信息，不作为起始日期
	if yearRangeRe.MatchString(token) {
		return time.Time{}, fmt.Errorf("%w: %q 是年份区间", ErrUnparseableDate, token)
	}

	if m := numericMonthRe.FindStringSubmatch(token); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return dateWithDefaultDay(year, time.Month(month), now), nil
		}
		return time.Time{}, fmt.Errorf("%w: %q 月份超出范围", ErrUnparseableDate, token)
	}

	parsed, err := dateparse.ParseIn(token, now.Location())
	if err != nil {
		// dateparse 默认按月在前解析，日在前的写法交换后再试一次
		if m := dayMonthYearRe.FindStringSubmatch(token); m != nil {
			swapped := m[2] + "/" + m[1] + "/" + m[3]
			if parsed, err = dateparse.ParseIn(swapped, now.Location()); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrUnparseableDate, token, err)
	}
	return parsed, nil
}

// CalendarDelta 计算 start 到 end 之间相差的整年整月，忽略更细的单位
func CalendarDelta(start, end time.Time) TenureEstimate {
	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	if months > 0 && addMonths(start, months).After(end) {
		months--
	} else if months < 0 && addMonths(start, months).Before(end) {
		months++
	}
	return TenureEstimate{Years: months / 12, Months: months % 12}
}

// AggregateTenure 将每个日期片段视为一段持续至今的经历，逐个累加到总年限。
// 无法解析的片段被跳过并返回，不会中断计算。
func AggregateTenure(dates DateSet, now time.Time) (TenureEstimate, []SkippedDate) {
	var total TenureEstimate
	var skipped []SkippedDate
	for _, token := range dates {
		start, err := ParseDateToken(token, now)
		if err != nil {
			skipped = append(skipped, SkippedDate{Token: token, Err: err})
			continue
		}
		total = total.Add(CalendarDelta(start, now))
	}
	return total, skipped
}

// extraMonthAliases 只用于解析的月份写法，不参与 ConvertMonthName
var extraMonthAliases = map[string]time.Month{
	"sept": time.September,
}

func lookupMonth(word string) (time.Month, bool) {
	lower := strings.ToLower(word)
	if month, ok := extraMonthAliases[lower]; ok {
		return month, true
	}
	for _, alias := range monthAliases {
		if lower == alias.name {
			n, _ := strconv.Atoi(alias.num)
			return time.Month(n), true
		}
	}
	return 0, false
}

// dateWithDefaultDay 使用 now 的日期作为缺省日，超出当月天数时取月末
func dateWithDefaultDay(year int, month time.Month, now time.Time) time.Time {
	day := now.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonths 按日历月偏移，目标月份天数不足时取月末
func addMonths(t time.Time, months int) time.Time {
	total := int(t.Month()) - 1 + months
	year := t.Year() + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)
	day := t.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
