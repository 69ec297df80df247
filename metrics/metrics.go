// Package metrics 定义推荐引擎的 Prometheus 指标。
//
// 指标在包初始化时注册到默认 Registry，进程内只训练一次模型，因此训练类指标是一次性的，
// 查询类指标随 FilterByAuthor / FilterByRating / Recommend 调用累积。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rushteam/bookrec/core"
)

var (
	// ALSTrainingDuration 是一次完整 ALS 训练的耗时
	ALSTrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookrec_als_training_seconds",
			Help:    "Duration of ALS factorization runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	// ALSIterations 是已完成的 ALS 迭代次数
	ALSIterations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookrec_als_iterations_total",
			Help: "Total number of completed ALS iterations",
		},
	)

	// CatalogBooks 是当前书目中的书籍数量
	CatalogBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookrec_catalog_books",
			Help: "Number of books in the loaded catalog",
		},
	)

	// CatalogRowsDropped 是加载时因字段无法解析而丢弃的行数
	CatalogRowsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookrec_catalog_rows_dropped_total",
			Help: "Catalog rows dropped because a required field failed coercion",
		},
	)

	// Queries 按操作与结果统计查询次数
	Queries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_queries_total",
			Help: "Queries served by the engine",
		},
		[]string{"op", "outcome"},
	)
)

// 查询结果分类
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// RecordTraining 记录一次训练。
func RecordTraining(duration time.Duration, iterations int) {
	ALSTrainingDuration.Observe(duration.Seconds())
	ALSIterations.Add(float64(iterations))
}

// RecordQuery 记录一次查询；outcome 由结果条数与错误类型推导。
func RecordQuery(op string, results int, err error) {
	Queries.WithLabelValues(op, Outcome(results, err)).Inc()
}

// Outcome 将查询结果映射为指标标签值。
func Outcome(results int, err error) string {
	switch {
	case err == nil && results == 0:
		return OutcomeEmpty
	case err == nil:
		return OutcomeOK
	case core.IsNotFound(err):
		return OutcomeNotFound
	case core.IsInvalidArgument(err):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
