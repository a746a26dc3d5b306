package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"resume-matcher/internal/constants"
	"resume-matcher/internal/resume"
	"resume-matcher/internal/tracing"
	"resume-matcher/internal/types"
	"resume-matcher/pkg/utils"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	PDFExtractor PDFExtractor       // PDF文本提取
	TextCache    TextCache          // 可选，解码文本缓存
	Archiver     UploadArchiver     // 可选，原始文件归档
	Normalizer   *resume.Normalizer // 技能匹配前的文本规范化
	Contact      *resume.ContactExtractor
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	DocumentTimeout time.Duration
	Clock           Clock
	Logger          zerolog.Logger
}

// ResumeAnalyzer 将联系方式、经历日期、工作年限和技能匹配组合为一份分析结果。
// 实例创建后只读，可被并发请求共享。
type ResumeAnalyzer struct {
	comp Components
	set  Settings
}

// NewResumeAnalyzer 创建分析器，未设置的项使用默认值
func NewResumeAnalyzer(compOpts []ComponentOpt, setOpts []SettingOpt) *ResumeAnalyzer {
	comp := Components{Normalizer: resume.DefaultNormalizer, Contact: resume.DefaultContactExtractor}
	for _, opt := range compOpts {
		opt(&comp)
	}
	if comp.Normalizer == nil {
		comp.Normalizer = resume.DefaultNormalizer
	}
	if comp.Contact == nil {
		comp.Contact = resume.DefaultContactExtractor
	}

	set := Settings{
		DocumentTimeout: constants.DefaultDocumentTimeout,
		Clock:           time.Now,
		Logger:          zerolog.Nop(),
	}
	for _, opt := range setOpts {
		opt(&set)
	}
	set.Logger = set.Logger.With().Str("component", "resume_analyzer").Logger()

	return &ResumeAnalyzer{comp: comp, set: set}
}

// AnalyzeText 对已解码的简历文本执行完整分析。不会返回错误：
// 没有邮箱和电话时为 NoContact，其余情况按技能命中与否给出 200 结果。
func (a *ResumeAnalyzer) AnalyzeText(ctx context.Context, label, text, skillsRequired string) *types.AnalysisResult {
	_, span := tracing.Tracer().Start(ctx, "ResumeAnalyzer.AnalyzeText")
	defer span.End()

	contact := a.comp.Contact.Extract(text)

	section := resume.SegmentExperience(text)
	dates := resume.ExtractDates(section)
	tenure, skipped := resume.AggregateTenure(dates, a.set.Clock())
	for _, s := range skipped {
		a.set.Logger.Debug().Str("label", label).Str("token", s.Token).Err(s.Err).Msg("跳过无法解析的日期")
	}

	match := resume.MatchSkills(resume.ParseSkillSet(skillsRequired), text, a.comp.Normalizer)
	confidence := match.Confidence()

	a.logExtracted(label, contact, confidence, tenure)
	span.SetAttributes(
		attribute.String("resume.label", label),
		attribute.Int("resume.skills.required", len(match.Required)),
		attribute.Int("resume.skills.matched", len(match.Matched)),
		attribute.Int("resume.dates", len(dates)),
		attribute.Bool("resume.has_contact", contact.HasContact()),
	)

	if !contact.HasContact() {
		return &types.AnalysisResult{
			Status:  types.StatusNoContact,
			Success: false,
			Message: constants.MessageNoContactInfo,
			Code:    constants.CodeNoContact,
		}
	}

	result := &types.AnalysisResult{
		Status:          types.StatusMatched,
		Success:         true,
		Message:         constants.MessageSkillsMatched,
		Code:            constants.CodeOK,
		Contact:         contact,
		SkillsRequired:  skillsRequired,
		Confidence:      confidence,
		ExperienceDates: dates,
		TotalExperience: tenure,
	}
	if len(match.Matched) == 0 {
		result.Status = types.StatusNotMatched
		result.Message = constants.MessageSkillNotMatched
		result.Confidence = resume.ZeroConfidence
	}
	return result
}

func (a *ResumeAnalyzer) logExtracted(label string, contact resume.ContactInfo, confidence string, tenure resume.TenureEstimate) {
	event := a.set.Logger.Info().Str("label", label)
	if contact.Name != nil {
		event = event.Str("name", *contact.Name)
	}
	phone := constants.NoContactInfoPhone
	if contact.Phone != nil {
		phone = tracing.MaskPII(*contact.Phone)
	}
	event.Bool("has_email", contact.Email != nil).
		Str("phone", phone).
		Str("confidence", confidence).
		Str("experience", tenure.String()).
		Msg("简历信息提取完成")
}

type outcome struct {
	result *types.AnalysisResult
	err    error
}

// AnalyzeDocument 解码并分析一份上传文件。解码失败、超时和 panic 都在这里
// 被转换为 InternalError 结果，不会影响调用方处理其他文件。
func (a *ResumeAnalyzer) AnalyzeDocument(ctx context.Context, label string, doc Document, skillsRequired string) *types.AnalysisResult {
	ctx, span := tracing.Tracer().Start(ctx, "ResumeAnalyzer.AnalyzeDocument",
		trace.WithAttributes(
			attribute.String("resume.label", label),
			attribute.String("resume.filename", tracing.SafeAttributeValue("filename", doc.Filename, tracing.DefaultMaxLength)),
			attribute.Int("resume.size", len(doc.Data)),
		))
	defer span.End()

	docCtx, cancel := context.WithTimeout(ctx, a.set.DocumentTimeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.set.Logger.Error().Str("label", label).Interface("panic", r).
					Bytes("stack", debug.Stack()).Msg("简历分析发生panic")
				done <- outcome{err: NewPanicError(label, fmt.Sprint(r))}
			}
		}()

		text, err := a.decode(docCtx, label, doc)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		done <- outcome{result: a.AnalyzeText(docCtx, label, text, skillsRequired)}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			// 解析器因超时返回的错误按超时处理
			if errors.Is(docCtx.Err(), context.DeadlineExceeded) {
				return a.internalError(span, label, NewTimeoutError(label, fmt.Sprintf("超过 %s", a.set.DocumentTimeout)))
			}
			return a.internalError(span, label, out.err)
		}
		span.SetAttributes(attribute.String("resume.status", string(out.result.Status)))
		return out.result
	case <-docCtx.Done():
		if errors.Is(docCtx.Err(), context.DeadlineExceeded) {
			return a.internalError(span, label, NewTimeoutError(label, fmt.Sprintf("超过 %s", a.set.DocumentTimeout)))
		}
		return a.internalError(span, label, NewCancelledError(label, docCtx.Err().Error()))
	}
}

// decode 优先读取缓存；未命中时调用解析器，并在成功后回写缓存。
// 缓存和归档的失败只记录日志。
func (a *ResumeAnalyzer) decode(ctx context.Context, label string, doc Document) (string, error) {
	fileMD5 := utils.CalculateMD5(doc.Data)

	if a.comp.Archiver != nil {
		a.archive(ctx, label, doc)
	}

	if a.comp.TextCache != nil {
		text, found, err := a.comp.TextCache.GetDecodedText(ctx, fileMD5)
		if err != nil {
			a.set.Logger.Warn().Err(err).Str("label", label).Msg("读取解码文本缓存失败")
		} else if found {
			a.set.Logger.Debug().Str("label", label).Str("md5", fileMD5).Msg("解码文本缓存命中")
			return text, nil
		}
	}

	if a.comp.PDFExtractor == nil {
		return "", NewDecodeError(label, ErrExtractorMissing.Error())
	}

	ctx, span := tracing.Tracer().Start(ctx, "ResumeAnalyzer.Decode")
	defer span.End()

	text, _, err := a.comp.PDFExtractor.ExtractTextFromBytes(ctx, doc.Data, doc.Filename)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDecode)
		return "", NewDecodeError(label, err.Error())
	}
	span.SetAttributes(attribute.Int("resume.text_length", len(text)))

	if a.comp.TextCache != nil {
		if err := a.comp.TextCache.PutDecodedText(ctx, fileMD5, text); err != nil {
			a.set.Logger.Warn().Err(err).Str("label", label).Msg("写入解码文本缓存失败")
		}
	}
	return text, nil
}

func (a *ResumeAnalyzer) archive(ctx context.Context, label string, doc Document) {
	documentID, err := uuid.NewV7()
	if err != nil {
		a.set.Logger.Warn().Err(err).Str("label", label).Msg("生成文档ID失败, 跳过归档")
		return
	}
	objectName, err := a.comp.Archiver.ArchiveUpload(ctx, documentID.String(), doc.Filename,
		bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		a.set.Logger.Warn().Err(err).Str("label", label).Msg("归档原始文件失败")
		return
	}
	a.set.Logger.Debug().Str("label", label).Str("object", objectName).Msg("原始文件已归档")
}

func (a *ResumeAnalyzer) internalError(span trace.Span, label string, err error) *types.AnalysisResult {
	errType := tracing.ErrorTypeInternal
	switch {
	case errors.Is(err, ErrDecodeFailed):
		errType = tracing.ErrorTypeDecode
	case errors.Is(err, ErrDocumentTimeout):
		errType = tracing.ErrorTypeTimeout
	case errors.Is(err, ErrPipelinePanic):
		errType = tracing.ErrorTypePanic
	}
	tracing.RecordError(span, err, errType)
	a.set.Logger.Error().Err(err).Str("label", label).Msg("简历处理失败")

	return &types.AnalysisResult{
		Status:  types.StatusInternalError,
		Success: false,
		Message: constants.MessageErrorPrefix + err.Error(),
		Code:    constants.CodeInternalError,
	}
}

// AnalyzeBatch 按上传顺序逐份分析，标签为 "Resume 1"、"Resume 2"……
// 单份失败只影响它自己的结果。
func (a *ResumeAnalyzer) AnalyzeBatch(ctx context.Context, docs []Document, skillsRequired string) types.BatchResult {
	ctx, span := tracing.Tracer().Start(ctx, "ResumeAnalyzer.AnalyzeBatch",
		trace.WithAttributes(attribute.Int("resume.batch_size", len(docs))))
	defer span.End()

	results := make(types.BatchResult, 0, len(docs))
	for i, doc := range docs {
		label := fmt.Sprintf(constants.BatchLabelFormat, i+1)
		results = append(results, types.LabeledResult{
			Label:  label,
			Result: a.AnalyzeDocument(ctx, label, doc, skillsRequired),
		})
	}
	return results
}
