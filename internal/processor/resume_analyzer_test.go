package processor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-matcher/internal/resume"
	"resume-matcher/internal/types"
	"resume-matcher/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matchedResume = "Ali Raza\nSOFTWARE ENGINEER\nali@example.com\n\nExperience\n\nAcme March 2020 Python\n\nEducation\n\nBSc 2015"

// fakeExtractor 按文件内容返回预设文本，用于模拟各种解码结果
type fakeExtractor struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	switch string(data) {
	case "corrupt":
		return "", nil, errors.New("not a PDF file: missing %PDF header")
	case "panic":
		panic("boom")
	case "slow":
		<-ctx.Done()
		return "", nil, ctx.Err()
	}
	return string(data), map[string]interface{}{"source_uri": uri}, nil
}

func (f *fakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCache struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
}

func (c *fakeCache) GetDecodedText(ctx context.Context, fileMD5 string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", false, c.err
	}
	text, ok := c.texts[fileMD5]
	return text, ok, nil
}

func (c *fakeCache) PutDecodedText(ctx context.Context, fileMD5 string, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.texts[fileMD5] = text
	return nil
}

type fakeArchiver struct {
	mu       sync.Mutex
	archived []string
	err      error
}

func (a *fakeArchiver) ArchiveUpload(ctx context.Context, documentID, filename string, reader io.Reader, size int64) (string, error) {
	if _, err := io.ReadAll(reader); err != nil {
		return "", err
	}
	if a.err != nil {
		return "", a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.archived = append(a.archived, filename)
	return "uploads/" + documentID + "/original.pdf", nil
}

func fixedClock() time.Time {
	return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func newTestAnalyzer(extractor PDFExtractor, compOpts ...ComponentOpt) *ResumeAnalyzer {
	compOpts = append([]ComponentOpt{WithPDFExtractor(extractor)}, compOpts...)
	return NewResumeAnalyzer(compOpts, []SettingOpt{
		WithClock(fixedClock),
		WithDocumentTimeout(2 * time.Second),
	})
}

func TestAnalyzeText_Matched(t *testing.T) {
	analyzer := newTestAnalyzer(&fakeExtractor{})

	result := analyzer.AnalyzeText(context.Background(), "single", matchedResume, "Python, Java")

	assert.Equal(t, types.StatusMatched, result.Status)
	assert.True(t, result.Success)
	assert.Equal(t, 200, result.Code)
	assert.Equal(t, "Skills Matched", result.Message)
	assert.Equal(t, "50.0%", result.Confidence)
	assert.Equal(t, "Python, Java", result.SkillsRequired)
	require.NotNil(t, result.Contact.Name)
	assert.Equal(t, "Ali Raza", *result.Contact.Name)
	assert.Equal(t, []string{"March 2020"}, []string(result.ExperienceDates))
	assert.Equal(t, "4 years, 0 months", result.TotalExperience.String())
}

func TestAnalyzeText_NotMatched(t *testing.T) {
	analyzer := newTestAnalyzer(&fakeExtractor{})

	result := analyzer.AnalyzeText(context.Background(), "single", matchedResume, "Rust")

	assert.Equal(t, types.StatusNotMatched, result.Status)
	assert.True(t, result.Success)
	assert.Equal(t, "Skill Not Matched", result.Message)
	assert.Equal(t, "0.0%", result.Confidence)

	resp := result.ToResponse()
	assert.Equal(t, "200", resp.ResponseCode)
	data, ok := resp.Data.(types.ResumeData)
	require.True(t, ok)
	assert.Equal(t, "no contact info", data.Phone)
}

// 没有邮箱和电话时，即使技能全部命中也返回 404
func TestAnalyzeText_NoContactTakesPriority(t *testing.T) {
	analyzer := newTestAnalyzer(&fakeExtractor{})
	text := "Sara Ahmed\nBackend Developer\n\nPython Java Go"

	result := analyzer.AnalyzeText(context.Background(), "single", text, "Python, Java, Go")

	assert.Equal(t, types.StatusNoContact, result.Status)
	assert.False(t, result.Success)
	assert.Equal(t, 404, result.Code)
	assert.Equal(t, "No contact info", result.Message)

	body, err := json.Marshal(result.ToResponse())
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"responseMessage":"No contact info","responseCode":"404","data":{}}`, string(body))
}

func TestAnalyzeDocument_DecodeFailure(t *testing.T) {
	analyzer := newTestAnalyzer(&fakeExtractor{})

	result := analyzer.AnalyzeDocument(context.Background(), "single", Document{Filename: "bad.pdf", Data: []byte("corrupt")}, "Python")

	assert.Equal(t, types.StatusInternalError, result.Status)
	assert.False(t, result.Success)
	assert.Equal(t, 500, result.Code)
	assert.Contains(t, result.Message, "Error: ")
	assert.Contains(t, result.Message, ErrDecodeFailed.Error())
	assert.Contains(t, result.Message, "missing %PDF header")
}

func TestAnalyzeDocument_Panic(t *testing.T) {
	analyzer := newTestAnalyzer(&fakeExtractor{})

	result := analyzer.AnalyzeDocument(context.Background(), "single", Document{Filename: "p.pdf", Data: []byte("panic")}, "Python")

	assert.Equal(t, types.StatusInternalError, result.Status)
	assert.Contains(t, result.Message, ErrPipelinePanic.Error())
	assert.Contains(t, result.Message, "boom")
}

func TestAnalyzeDocument_Timeout(t *testing.T) {
	analyzer := NewResumeAnalyzer(
		[]ComponentOpt{WithPDFExtractor(&fakeExtractor{})},
		[]SettingOpt{WithDocumentTimeout(50 * time.Millisecond)},
	)

	start := time.Now()
	result := analyzer.AnalyzeDocument(context.Background(), "single", Document{Filename: "s.pdf", Data: []byte("slow")}, "Python")

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, types.StatusInternalError, result.Status)
	assert.Contains(t, result.Message, ErrDocumentTimeout.Error())
}

func TestAnalyzeDocument_MissingExtractor(t *testing.T) {
	analyzer := NewResumeAnalyzer(nil, nil)

	result := analyzer.AnalyzeDocument(context.Background(), "single", Document{Data: []byte(matchedResume)}, "Python")

	assert.Equal(t, 500, result.Code)
	assert.Contains(t, result.Message, ErrExtractorMissing.Error())
}

func TestAnalyzeDocument_UsesTextCache(t *testing.T) {
	extractor := &fakeExtractor{}
	cache := &fakeCache{texts: map[string]string{}}
	analyzer := newTestAnalyzer(extractor, WithTextCache(cache))
	doc := Document{Filename: "cv.pdf", Data: []byte(matchedResume)}

	first := analyzer.AnalyzeDocument(context.Background(), "single", doc, "Python")
	second := analyzer.AnalyzeDocument(context.Background(), "single", doc, "Python")

	assert.Equal(t, 1, extractor.Calls(), "第二次应命中缓存")
	assert.Equal(t, matchedResume, cache.texts[utils.CalculateMD5(doc.Data)])
	assert.Equal(t, first, second)
}

func TestAnalyzeDocument_CacheAndArchiveFailuresAreIgnored(t *testing.T) {
	extractor := &fakeExtractor{}
	analyzer := newTestAnalyzer(extractor,
		WithTextCache(&fakeCache{err: errors.New("connection refused")}),
		WithUploadArchiver(&fakeArchiver{err: errors.New("bucket missing")}),
	)

	result := analyzer.AnalyzeDocument(context.Background(), "single", Document{Filename: "cv.pdf", Data: []byte(matchedResume)}, "Python")

	assert.Equal(t, types.StatusMatched, result.Status)
	assert.Equal(t, 1, extractor.Calls())
}

func TestAnalyzeDocument_ArchivesUpload(t *testing.T) {
	archiver := &fakeArchiver{}
	analyzer := newTestAnalyzer(&fakeExtractor{}, WithUploadArchiver(archiver))

	analyzer.AnalyzeDocument(context.Background(), "single", Document{Filename: "cv.pdf", Data: []byte(matchedResume)}, "Python")
	analyzer.AnalyzeDocument(context.Background(), "single", Document{Filename: "bad.pdf", Data: []byte("corrupt")}, "Python")

	assert.Equal(t, []string{"cv.pdf", "bad.pdf"}, archiver.archived)
}

// 第二份文件损坏时，其余文件的结果不受影响
func TestAnalyzeBatch_IsolatesFailures(t *testing.T) {
	analyzer := newTestAnalyzer(&fakeExtractor{})
	docs := []Document{
		{Filename: "a.pdf", Data: []byte(matchedResume)},
		{Filename: "b.pdf", Data: []byte("corrupt")},
		{Filename: "c.pdf", Data: []byte("Sara Ahmed\nDeveloper\n03001234567\n\nGo")},
	}

	results := analyzer.AnalyzeBatch(context.Background(), docs, "Python, Go")

	require.Len(t, results, 3)
	assert.Equal(t, "Resume 1", results[0].Label)
	assert.Equal(t, "Resume 2", results[1].Label)
	assert.Equal(t, "Resume 3", results[2].Label)

	assert.Equal(t, types.StatusMatched, results[0].Result.Status)
	assert.Equal(t, "50.0%", results[0].Result.Confidence)

	assert.Equal(t, 500, results[1].Result.Code)
	assert.Contains(t, results[1].Result.Message, "Resume 2")

	third, ok := results.Get("Resume 3")
	require.True(t, ok)
	assert.Equal(t, types.StatusMatched, third.Status)
	assert.Equal(t, "50.0%", third.Confidence)
	require.NotNil(t, third.Contact.Phone)
	assert.Equal(t, "03001234567", *third.Contact.Phone)

	// 单独分析的结果与批量中的结果一致
	alone := analyzer.AnalyzeDocument(context.Background(), "Resume 3", docs[2], "Python, Go")
	assert.Equal(t, alone, third)
}

func TestBatchResult_MarshalKeepsOrder(t *testing.T) {
	analyzer := newTestAnalyzer(&fakeExtractor{})
	docs := make([]Document, 11)
	for i := range docs {
		docs[i] = Document{Data: []byte("corrupt")}
	}

	body, err := json.Marshal(analyzer.AnalyzeBatch(context.Background(), docs, "Go"))
	require.NoError(t, err)

	var decoded map[string]types.ResumeResponse
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Len(t, decoded, 11)
	assert.Equal(t, "500", decoded["Resume 11"].ResponseCode)

	// "Resume 10" 排在 "Resume 2" 之后，保持上传顺序
	s := string(body)
	assert.Less(t, strings.Index(s, `"Resume 2"`), strings.Index(s, `"Resume 10"`))
}

func TestNewResumeAnalyzer_ContactExtractorOption(t *testing.T) {
	pk, err := resume.NewContactExtractor("PK")
	require.NoError(t, err)

	withRegion := newTestAnalyzer(&fakeExtractor{}, WithContactExtractor(pk))
	result := withRegion.AnalyzeText(context.Background(), "single", "Sara Ahmed\nDeveloper\n03001234567\n\nGo", "Go")
	require.NotNil(t, result.Contact.Phone)
	assert.Equal(t, "03001234567", *result.Contact.Phone)

	// nil 时回退到默认地区规则
	fallback := newTestAnalyzer(&fakeExtractor{}, WithContactExtractor(nil))
	assert.Equal(t, result, fallback.AnalyzeText(context.Background(), "single", "Sara Ahmed\nDeveloper\n03001234567\n\nGo", "Go"))
}
