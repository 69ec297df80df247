package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/logging"
)

// Pipeline 把一次查询拆成可组合的 Node 链：召回 → 过滤 → 截断。
//
// Pipeline 构建后只读，可被多个 goroutine 并发 Run。
type Pipeline struct {
	Name  string
	Nodes []Node
}

// Run 依次执行各 Node，上一个 Node 的输出作为下一个的输入。
// 每个 Node 执行前检查 ctx；任一 Node 出错即终止，错误以 Node 名称包装。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	log := logging.Component("pipeline")
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		if e := log.Debug(); e.Enabled() {
			e.Str("pipeline", p.Name).
				Str("node", node.Name()).
				Str("kind", string(node.Kind())).
				Int("in", len(cur)).
				Int("out", len(next)).
				Dur("took", time.Since(start)).
				Msg("node done")
		}
		cur = next
	}
	return cur, nil
}
