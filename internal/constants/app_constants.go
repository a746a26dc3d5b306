package constants

import "time"

const (
	// ServiceName 服务名称，用于日志与链路追踪
	ServiceName = "resume-matcher"

	// 响应码（以字符串形式出现在 responseCode 中）
	CodeOK            = 200
	CodeBadRequest    = 400
	CodeNoContact     = 404
	CodeInternalError = 500

	// 响应消息
	MessageSkillsMatched    = "Skills Matched"
	MessageSkillNotMatched  = "Skill Not Matched"
	MessageNoContactInfo    = "No contact info"
	MessageErrorPrefix      = "Error: "
	NoContactInfoPhone      = "no contact info"
	BatchLabelFormat        = "Resume %d"
	DefaultDocumentTimeout  = 30 * time.Second
	DefaultMaxRequestBodyMB = 20

	// 表单字段
	FormSkillsRequired = "skills_required"
	FormResumeFile     = "resume_file"
	FormResumeFiles    = "resume_files"

	// HeaderAPIKey API Key 所在的请求头
	HeaderAPIKey = "X-API-Key"
)

// Redis Key 统一命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"
	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"
	// EntityText 解码后的文本实体
	EntityText = "text"

	// KeyDecodedText 按原始文件MD5缓存的解码文本 (STRING)
	// 格式: app:resume:text:{fileMD5}
	KeyDecodedText = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityText + ":%s"

	// DefaultTextCacheTTL 解码文本缓存的默认过期时间
	DefaultTextCacheTTL = 24 * time.Hour
)

// MinIO 对象路径
const (
	// ArchiveObjectFormat 原始上传文件归档路径: uploads/{documentID}/original{ext}
	ArchiveObjectFormat = "uploads/%s/original%s"
)
