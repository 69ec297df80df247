package core

// 引擎默认参数，启动时固定，运行期不可调整。
const (
	DefaultFactors        = 50  // 隐向量维度 k
	DefaultRegularization = 0.1 // L2 正则 λ
	DefaultIterations     = 20  // ALS 迭代次数
	DefaultPageSize       = 10  // 属性过滤结果页大小
	DefaultRecommendCount = 5   // 以书找书默认返回条数
	DefaultMaxBookID      = 1_000_000
	DefaultPopularKey     = "hot:books"
	DefaultBlacklistKey   = "blacklist:books"
)
