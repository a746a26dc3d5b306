package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"resume-matcher/internal/constants"
	"resume-matcher/internal/processor"
	"resume-matcher/internal/tracing"
	"resume-matcher/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ResumeHandler 处理单份和批量简历上传
type ResumeHandler struct {
	analyzer *processor.ResumeAnalyzer
	logger   zerolog.Logger
}

// NewResumeHandler 创建一个新的简历处理器
func NewResumeHandler(analyzer *processor.ResumeAnalyzer, logger zerolog.Logger) *ResumeHandler {
	return &ResumeHandler{
		analyzer: analyzer,
		logger:   logger.With().Str("component", "resume_handler").Logger(),
	}
}

// SingleResume 处理 POST /single_resume。
// 分析完成后 HTTP 状态总是 200，结果码放在 responseCode 中。
func (h *ResumeHandler) SingleResume(ctx context.Context, c *app.RequestContext) {
	skills, ok := h.skillsRequired(ctx, c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile(constants.FormResumeFile)
	if err != nil {
		h.badRequest(ctx, c, fmt.Sprintf("缺少上传文件 %s", constants.FormResumeFile))
		return
	}
	doc, err := readDocument(fileHeader)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("读取上传文件失败")
		h.badRequest(ctx, c, "读取上传文件失败")
		return
	}

	result := h.analyzer.AnalyzeDocument(ctx, "single", doc, skills)
	c.JSON(consts.StatusOK, result.ToResponse())
}

// BulkResume 处理 POST /bulk_resume，按上传顺序返回 "Resume <n>" 为键的结果对象
func (h *ResumeHandler) BulkResume(ctx context.Context, c *app.RequestContext) {
	skills, ok := h.skillsRequired(ctx, c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File[constants.FormResumeFiles]) == 0 {
		h.badRequest(ctx, c, fmt.Sprintf("缺少上传文件 %s", constants.FormResumeFiles))
		return
	}

	fileHeaders := form.File[constants.FormResumeFiles]
	docs := make([]processor.Document, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		doc, err := readDocument(fh)
		if err != nil {
			h.logger.Error().Err(err).Str("filename", fh.Filename).Msg("读取上传文件失败")
			h.badRequest(ctx, c, "读取上传文件失败")
			return
		}
		docs = append(docs, doc)
	}

	h.logger.Info().Int("count", len(docs)).Msg("开始批量分析简历")
	c.JSON(consts.StatusOK, h.analyzer.AnalyzeBatch(ctx, docs, skills))
}

// Health 健康检查
func (h *ResumeHandler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

func (h *ResumeHandler) skillsRequired(ctx context.Context, c *app.RequestContext) (string, bool) {
	skills := string(c.PostForm(constants.FormSkillsRequired))
	if strings.TrimSpace(skills) == "" {
		h.badRequest(ctx, c, fmt.Sprintf("缺少表单字段 %s", constants.FormSkillsRequired))
		return "", false
	}
	return skills, true
}

func (h *ResumeHandler) badRequest(ctx context.Context, c *app.RequestContext, message string) {
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), errors.New(message), consts.StatusBadRequest)
	h.logger.Warn().Str("path", string(c.Path())).Msg(message)

	c.JSON(consts.StatusBadRequest, types.ResumeResponse{
		Success:         false,
		ResponseMessage: message,
		ResponseCode:    fmt.Sprint(constants.CodeBadRequest),
		Data:            types.EmptyData,
	})
}

func readDocument(fh *multipart.FileHeader) (processor.Document, error) {
	file, err := fh.Open()
	if err != nil {
		return processor.Document{}, fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return processor.Document{}, fmt.Errorf("读取文件内容失败: %w", err)
	}
	return processor.Document{Filename: fh.Filename, Data: data}, nil
}
