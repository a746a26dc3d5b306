package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// MetadataMode Tika 元数据提取模式
type MetadataMode string

const (
	MetadataNone    MetadataMode = "none"
	MetadataMinimal MetadataMode = "minimal"
	MetadataFull    MetadataMode = "full"
)

// TikaPDFExtractor 是基于Apache Tika的PDF解析器
type TikaPDFExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	Client    *http.Client

	metadataMode MetadataMode
	// 是否提取链接注释文本
	extractAnnotations bool
	logger             zerolog.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaPDFExtractor)

// WithMetadataMode 配置元数据提取模式
func WithMetadataMode(mode MetadataMode) TikaOption {
	return func(e *TikaPDFExtractor) {
		switch mode {
		case MetadataNone, MetadataMinimal, MetadataFull:
			e.metadataMode = mode
		}
	}
}

// WithAnnotations 配置是否提取PDF链接注释文本
func WithAnnotations(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.extractAnnotations = extract
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger zerolog.Logger) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.logger = logger
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.Client.Timeout = timeout
	}
}

// NewTikaPDFExtractor 创建一个新的Tika PDF解析器
func NewTikaPDFExtractor(serverURL string, options ...TikaOption) *TikaPDFExtractor {
	extractor := &TikaPDFExtractor{
		ServerURL:          serverURL,
		Client:             &http.Client{Timeout: 60 * time.Second},
		metadataMode:       MetadataMinimal,
		extractAnnotations: true,
		logger:             zerolog.Nop(),
	}
	for _, option := range options {
		option(extractor)
	}
	extractor.logger = extractor.logger.With().Str("component", "tika_pdf").Logger()
	return extractor
}

// ExtractTextFromReader 从io.Reader提取文本内容
func (e *TikaPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri)
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *TikaPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	metadata := map[string]interface{}{
		"extraction_time": startTime.Format(time.RFC3339),
		"source_uri":      uri,
	}

	headers := map[string]string{"Accept": "text/plain"}
	if !e.extractAnnotations {
		headers["X-Tika-PDFExtractAnnotationText"] = "false"
	}
	textBytes, err := e.put(ctx, "/tika", data, uri, headers)
	if err != nil {
		e.logger.Warn().Err(err).Str("uri", uri).Msg("Tika文本提取失败")
		return "", metadata, err
	}
	text := string(textBytes)
	metadata["text_length"] = len(text)
	metadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	if e.metadataMode == MetadataNone {
		return text, metadata, nil
	}

	raw, err := e.extractMetadata(ctx, data, uri)
	if err != nil {
		// 元数据失败不影响文本结果
		e.logger.Debug().Err(err).Str("uri", uri).Msg("元数据提取失败, 继续使用基本元数据")
		return text, metadata, nil
	}
	for k, v := range raw {
		if e.metadataMode == MetadataFull || isImportantMetadata(k) {
			metadata[k] = v
		}
	}
	return text, metadata, nil
}

func isImportantMetadata(key string) bool {
	switch key {
	case "pdf:PDFVersion", "xmpTPg:NPages", "dcterms:created", "language",
		"dc:title", "Content-Type", "pdf:docinfo:title", "pdf:docinfo:created":
		return true
	}
	return false
}

func (e *TikaPDFExtractor) extractMetadata(ctx context.Context, data []byte, uri string) (map[string]interface{}, error) {
	body, err := e.put(ctx, "/meta", data, uri, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
	}
	return metadata, nil
}

func (e *TikaPDFExtractor) put(ctx context.Context, path string, data []byte, uri string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Tika响应失败: %w", err)
	}
	return body, nil
}
