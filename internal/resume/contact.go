package resume

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// NameMarker 第二行出现该标记时，认为第二行是职位而不是姓名的一部分
const NameMarker = "ENGINEER"

// EmailPattern 邮箱的宽松匹配形态
var EmailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

// DefaultPhoneRegion 未指定地区时使用的电话号码规则
const DefaultPhoneRegion = "PK"

// PhoneShapesByRegion 各地区的电话号码形态，顺序即优先级（同一位置上靠前的形态优先）
var PhoneShapesByRegion = map[string][]string{
	"PK": {
		`\+92-\d{10}`,
		`\+92\d{9}`,
		`\+03\d{2}-\d{7}`,
		`03\d{9}`,
		`\+92\s?\d{10}`,
	},
}

// ErrUnsupportedRegion 没有该地区的电话号码规则
var ErrUnsupportedRegion = errors.New("不支持的电话号码地区")

// ContactExtractor 按地区电话规则提取联系信息，创建后只读
type ContactExtractor struct {
	region string
	phone  *regexp.Regexp
}

// NewContactExtractor 将地区的电话形态组合为一个正则，取文本中最靠前的匹配
func NewContactExtractor(region string) (*ContactExtractor, error) {
	shapes, ok := PhoneShapesByRegion[region]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRegion, region)
	}
	return &ContactExtractor{
		region: region,
		phone:  regexp.MustCompile(strings.Join(shapes, "|")),
	}, nil
}

// DefaultContactExtractor 使用 DefaultPhoneRegion 规则的共享实例
var DefaultContactExtractor = mustContactExtractor(DefaultPhoneRegion)

func mustContactExtractor(region string) *ContactExtractor {
	e, err := NewContactExtractor(region)
	if err != nil {
		panic(err)
	}
	return e
}

// Region 电话规则所属地区
func (e *ContactExtractor) Region() string {
	return e.region
}

// ContactInfo 从简历中提取的联系信息，缺失字段为 nil
type ContactInfo struct {
	Name  *string
	Email *string
	Phone *string
}

// HasContact 邮箱或电话至少存在一个
func (c ContactInfo) HasContact() bool {
	return c.Email != nil || c.Phone != nil
}

// ExtractContact 使用默认地区规则提取联系信息
func ExtractContact(text string) ContactInfo {
	return DefaultContactExtractor.Extract(text)
}

// Extract 提取姓名、邮箱和电话，不会失败。
//
// 姓名规则：第一行原样作为姓名；再取第二行的前两个词，只要其中不含 "ENGINEER"
// 就拼接到姓名后面。文本只有一行时没有姓名。
func (e *ContactExtractor) Extract(text string) ContactInfo {
	var info ContactInfo

	if email := EmailPattern.FindString(text); email != "" {
		info.Email = &email
	}
	if phone := e.phone.FindString(text); phone != "" {
		info.Phone = &phone
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 1 {
		firstLine := strings.TrimSpace(lines[0])
		words := strings.Fields(lines[1])
		if len(words) > 2 {
			words = words[:2]
		}

		name := firstLine
		if !containsWord(words, NameMarker) {
			name = strings.TrimSpace(firstLine + " " + strings.Join(words, " "))
		}
		info.Name = &name
	}

	return info
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}
