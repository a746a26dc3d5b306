package resume

import "strings"

// ExperienceHeading 经历段落的起始标题，必须逐字符完全相同才会命中
const ExperienceHeading = "Experience"

// SectionHeadings 经历段落之后可能出现的其他简历标题（小写比较）
var SectionHeadings = []string{
	"education",
	"contact information",
	"contact",
	"objective or summary",
	"skills",
	"certifications",
	"projects",
	"volunteer work",
	"awards and honors",
	"languages",
	"summary",
}

// IsSectionHeading 判断文本块是否为经历之外的简历标题
func IsSectionHeading(block string) bool {
	lower := strings.ToLower(block)
	for _, heading := range SectionHeadings {
		if lower == heading {
			return true
		}
	}
	return false
}

// SplitBlocks 按空行切分文本并去除每块首尾空白
func SplitBlocks(text string) []string {
	blocks := strings.Split(text, "\n\n")
	for i, block := range blocks {
		blocks[i] = strings.TrimSpace(block)
	}
	return blocks
}

// SegmentExperience 截取最可能描述工作经历的文本。
//
// 找到第一个内容恰为 "Experience" 的文本块后，取其后的文本块，直到下一个已知标题（不含）
// 或文档结尾，用 ", " 连接。没有该标题时整篇文档视为经历文本，用换行连接。
func SegmentExperience(text string) string {
	blocks := SplitBlocks(text)

	start := -1
	for i, block := range blocks {
		if block == ExperienceHeading {
			start = i
			break
		}
	}
	if start < 0 {
		return strings.Join(blocks, "\n")
	}

	end := len(blocks)
	for i := start + 1; i < len(blocks); i++ {
		if IsSectionHeading(blocks[i]) {
			end = i
			break
		}
	}
	return strings.Join(blocks[start+1:end], ", ")
}
