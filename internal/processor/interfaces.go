package processor

import (
	"context"
	"io"
	"time"
)

// PDFExtractor PDF提取器接口
type PDFExtractor interface {
	// ExtractTextFromBytes 从字节数组提取文本和元数据，uri 仅用于日志和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}

// TextCache 按原始文件MD5缓存解码后的文本，不缓存分析结果
type TextCache interface {
	GetDecodedText(ctx context.Context, fileMD5 string) (string, bool, error)
	PutDecodedText(ctx context.Context, fileMD5 string, text string) error
}

// UploadArchiver 归档原始上传文件
type UploadArchiver interface {
	ArchiveUpload(ctx context.Context, documentID, filename string, reader io.Reader, size int64) (string, error)
}

// Clock 返回当前时间，测试中可替换
type Clock func() time.Time

// Document 一份待分析的上传文件
type Document struct {
	Filename string
	Data     []byte
}
