package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrDecodeFailed      = errors.New("提取简历文本失败")
	ErrDocumentTimeout   = errors.New("简历处理超时")
	ErrPipelinePanic     = errors.New("简历分析异常")
	ErrExtractorMissing  = errors.New("未配置PDF解析器")
	ErrAnalysisCancelled = errors.New("简历处理已取消")
)

// AnalysisError 单份简历在文档边界上的失败，对应 500 结果
type AnalysisError struct {
	Label   string
	Op      string
	BaseErr error
	Detail  string
}

func (e *AnalysisError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文档:%s): %s", e.BaseErr, e.Op, e.Label, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文档:%s)", e.BaseErr, e.Op, e.Label)
}

func (e *AnalysisError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *AnalysisError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewDecodeError(label, detail string) error {
	return &AnalysisError{
		Label:   label,
		Op:      "decode",
		BaseErr: ErrDecodeFailed,
		Detail:  detail,
	}
}

func NewTimeoutError(label, detail string) error {
	return &AnalysisError{
		Label:   label,
		Op:      "analyze",
		BaseErr: ErrDocumentTimeout,
		Detail:  detail,
	}
}

func NewPanicError(label, detail string) error {
	return &AnalysisError{
		Label:   label,
		Op:      "analyze",
		BaseErr: ErrPipelinePanic,
		Detail:  detail,
	}
}

func NewCancelledError(label, detail string) error {
	return &AnalysisError{
		Label:   label,
		Op:      "analyze",
		BaseErr: ErrAnalysisCancelled,
		Detail:  detail,
	}
}
