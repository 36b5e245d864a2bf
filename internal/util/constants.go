package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeImage = "image/"
	MimeVideo = "video/"
)

// 上传课程封面的大小上限
const MaxImageSize = 5 << 20

// CategoryAll 查询课程时表示不过滤分类
const CategoryAll = "all"

// ContextUserKey 认证中间件在 gin.Context 中保存调用方身份的键
const ContextUserKey = "user"
