package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"resume-matcher/internal/constants"
	"resume-matcher/internal/resume"
)

// AnalysisStatus 单份简历分析的最终状态
type AnalysisStatus string

const (
	// StatusMatched 至少命中一个技能
	StatusMatched AnalysisStatus = "MATCHED"
	// StatusNotMatched 有联系方式但没有命中技能
	StatusNotMatched AnalysisStatus = "NOT_MATCHED"
	// StatusNoContact 邮箱和电话均未找到
	StatusNoContact AnalysisStatus = "NO_CONTACT"
	// StatusInternalError 解码失败、超时或流水线内部异常
	StatusInternalError AnalysisStatus = "INTERNAL_ERROR"
)

// AnalysisResult 单份简历的分析结果，创建后不再修改
type AnalysisResult struct {
	Status          AnalysisStatus
	Success         bool
	Message         string
	Code            int
	Contact         resume.ContactInfo
	SkillsRequired  string
	Confidence      string
	ExperienceDates resume.DateSet
	TotalExperience resume.TenureEstimate
}

// ResumeData 成功响应中的 data 字段
type ResumeData struct {
	SkillsRequired  string   `json:"skills_required"`
	Confidence      string   `json:"confidence"`
	Name            *string  `json:"name"`
	Email           *string  `json:"email"`
	Phone           string   `json:"phone"`
	ExperienceDates []string `json:"experience_dates"`
	TotalExperience string   `json:"total_experience"`
}

// ResumeResponse 单份简历的响应结构
type ResumeResponse struct {
	Success         bool        `json:"success"`
	ResponseMessage string      `json:"responseMessage"`
	ResponseCode    string      `json:"responseCode"`
	Data            interface{} `json:"data"`
}

// EmptyData 404/500 响应中的空 data 对象
var EmptyData = struct{}{}

// ToResponse 转换为对外的 JSON 结构
func (r *AnalysisResult) ToResponse() ResumeResponse {
	resp := ResumeResponse{
		Success:         r.Success,
		ResponseMessage: r.Message,
		ResponseCode:    fmt.Sprintf("%d", r.Code),
		Data:            EmptyData,
	}
	if r.Status != StatusMatched && r.Status != StatusNotMatched {
		return resp
	}

	phone := constants.NoContactInfoPhone
	if r.Contact.Phone != nil {
		phone = *r.Contact.Phone
	}
	dates := []string(r.ExperienceDates)
	if dates == nil {
		dates = []string{}
	}
	resp.Data = ResumeData{
		SkillsRequired:  r.SkillsRequired,
		Confidence:      r.Confidence,
		Name:            r.Contact.Name,
		Email:           r.Contact.Email,
		Phone:           phone,
		ExperienceDates: dates,
		TotalExperience: r.TotalExperience.String(),
	}
	return resp
}

// LabeledResult 批量分析中带序号标签的结果
type LabeledResult struct {
	Label  string
	Result *AnalysisResult
}

// BatchResult 批量分析结果，保持上传顺序
type BatchResult []LabeledResult

// MarshalJSON 输出为 {"Resume 1": {...}, "Resume 2": {...}}，键的顺序与上传顺序一致
func (b BatchResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Label)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(item.Result.ToResponse())
		if err != nil {
			return nil, fmt.Errorf("序列化 %s 失败: %w", item.Label, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get 按标签查找结果
func (b BatchResult) Get(label string) (*AnalysisResult, bool) {
	for _, item := range b {
		if item.Label == label {
			return item.Result, true
		}
	}
	return nil, false
}
