// Package catalog 负责书目的加载与只读访问。
//
// Catalog 构造完成后不可变，可被任意数量的并发查询共享。
package catalog

import (
	"sort"
	"strings"

	"github.com/rushteam/bookrec/core"
)

// Catalog 是按原始文件顺序排列的书目。
type Catalog struct {
	books []core.Book
	index map[int64]int // book ID -> books 下标
	maxID int64
	stats Stats
}

// Stats 记录加载过程中的统计信息。
type Stats struct {
	Rows       int // 读取的数据行数（不含表头）
	Dropped    int // 字段无法解析/缺失而丢弃的行数
	Duplicates int // 重复 ID 被丢弃的行数
}

// FromBooks 从已类型化的记录构建书目，规则与 Load 一致：
// 非法记录（负数、非有限评分）被丢弃，重复 ID 保留首次出现。
func FromBooks(books []core.Book) (*Catalog, error) {
	c := newCatalog(len(books))
	for _, b := range books {
		c.stats.Rows++
		if !valid(b) {
			c.stats.Dropped++
			continue
		}
		b.Authors = strings.TrimSpace(b.Authors)
		c.add(b)
	}
	return c, nil
}

func newCatalog(capacity int) *Catalog {
	return &Catalog{
		books: make([]core.Book, 0, capacity),
		index: make(map[int64]int, capacity),
		maxID: -1,
	}
}

func (c *Catalog) add(b core.Book) bool {
	if _, ok := c.index[b.ID]; ok {
		c.stats.Duplicates++
		return false
	}
	c.index[b.ID] = len(c.books)
	c.books = append(c.books, b)
	if b.ID > c.maxID {
		c.maxID = b.ID
	}
	return true
}

// Len 返回书籍数量。
func (c *Catalog) Len() int { return len(c.books) }

// MaxID 返回最大书籍 ID；空书目返回 -1。
func (c *Catalog) MaxID() int64 { return c.maxID }

// Stats 返回加载统计。
func (c *Catalog) Stats() Stats { return c.stats }

// Get 按 ID 查找书籍。
func (c *Catalog) Get(id int64) (core.Book, bool) {
	i, ok := c.index[id]
	if !ok {
		return core.Book{}, false
	}
	return c.books[i], true
}

// Has 判断 ID 是否在书目中。
func (c *Catalog) Has(id int64) bool {
	_, ok := c.index[id]
	return ok
}

// Books 返回按书目顺序排列的副本。
func (c *Catalog) Books() []core.Book {
	out := make([]core.Book, len(c.books))
	copy(out, c.books)
	return out
}

// Each 按书目顺序遍历，fn 返回 false 时停止。
func (c *Catalog) Each(fn func(core.Book) bool) {
	for _, b := range c.books {
		if !fn(b) {
			return
		}
	}
}

// IDs 返回按书目顺序排列的 ID 列表。
func (c *Catalog) IDs() []int64 {
	out := make([]int64, len(c.books))
	for i, b := range c.books {
		out[i] = b.ID
	}
	return out
}

// Authors 返回去重并排序后的作者列表（供作者下拉框使用）。
func (c *Catalog) Authors() []string {
	seen := make(map[string]struct{}, len(c.books))
	out := make([]string, 0, len(c.books))
	for _, b := range c.books {
		if b.Authors == "" {
			continue
		}
		if _, ok := seen[b.Authors]; ok {
			continue
		}
		seen[b.Authors] = struct{}{}
		out = append(out, b.Authors)
	}
	sort.Strings(out)
	return out
}

// RatingOptions 返回去重后的平均评分，降序（供评分下拉框使用）。
func (c *Catalog) RatingOptions() []float64 {
	seen := make(map[float64]struct{}, 512)
	out := make([]float64, 0, 512)
	for _, b := range c.books {
		if _, ok := seen[b.AverageRating]; ok {
			continue
		}
		seen[b.AverageRating] = struct{}{}
		out = append(out, b.AverageRating)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}
