package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/metrics"
	"github.com/rushteam/bookrec/pkg/logging"
)

// 列名（与 Goodreads books.csv 一致）
const (
	ColumnID               = "bookID"
	ColumnTitle            = "title"
	ColumnAuthors          = "authors"
	ColumnAverageRating    = "average_rating"
	ColumnNumPages         = "num_pages"
	ColumnRatingsCount     = "ratings_count"
	ColumnTextReviewsCount = "text_reviews_count"

	ColumnISBN            = "isbn"
	ColumnISBN13          = "isbn13"
	ColumnLanguageCode    = "language_code"
	ColumnPublicationDate = "publication_date"
	ColumnPublisher       = "publisher"
)

var requiredColumns = []string{
	ColumnID,
	ColumnTitle,
	ColumnAuthors,
	ColumnAverageRating,
	ColumnNumPages,
	ColumnRatingsCount,
	ColumnTextReviewsCount,
}

// Option 是 Load 的可选配置。
type Option func(*loadOptions)

type loadOptions struct {
	comma rune
}

// WithComma 设置字段分隔符，默认 ','。
func WithComma(r rune) Option {
	return func(o *loadOptions) {
		o.comma = r
	}
}

// LoadFile 从 CSV 文件加载书目。
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewConfigurationError(core.ModuleCatalog, "open catalog %s", path).WithCause(err)
	}
	defer f.Close()
	return Load(f, opts...)
}

// Load 从带表头的 CSV 读取书目。
//
// average_rating / num_pages / ratings_count / text_reviews_count 以及 bookID
// 任一无法解析、非有限或为负的行会被整体丢弃，不以默认值保留。
// authors 去除首尾空白。缺少必需列时返回 CONFIGURATION 错误。
func Load(r io.Reader, opts ...Option) (*Catalog, error) {
	o := loadOptions{comma: ','}
	for _, opt := range opts {
		opt(&o)
	}

	log := logging.Component("catalog")

	reader := csv.NewReader(r)
	reader.Comma = o.comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, core.NewConfigurationError(core.ModuleCatalog, "catalog has no header row")
		}
		return nil, core.NewConfigurationError(core.ModuleCatalog, "read catalog header").WithCause(err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	c := newCatalog(1024)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				c.stats.Rows++
				c.stats.Dropped++
				log.Debug().Int("line", parseErr.Line).Err(err).Msg("dropping malformed row")
				continue
			}
			return nil, core.NewConfigurationError(core.ModuleCatalog, "read catalog").WithCause(err)
		}
		c.stats.Rows++

		book, err := cols.parse(record)
		if err != nil {
			c.stats.Dropped++
			log.Debug().Int("row", c.stats.Rows).Err(err).Msg("dropping row")
			continue
		}
		if !c.add(book) {
			log.Debug().Int64("book_id", book.ID).Msg("dropping duplicate book id")
		}
	}

	metrics.CatalogBooks.Set(float64(c.Len()))
	metrics.CatalogRowsDropped.Add(float64(c.stats.Dropped))
	log.Info().
		Int("rows", c.stats.Rows).
		Int("books", c.Len()).
		Int("dropped", c.stats.Dropped).
		Int("duplicates", c.stats.Duplicates).
		Msg("catalog loaded")

	return c, nil
}

// columns 是列名到下标的映射，可选列不存在时为 -1。
type columns struct {
	id, title, authors, rating, pages, ratings, reviews int
	isbn, isbn13, lang, pubDate, publisher              int
}

func resolveColumns(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := pos[name]; !ok {
			pos[name] = i
		}
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := pos[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return columns{}, core.NewConfigurationError(core.ModuleCatalog, "catalog missing required columns %v", missing)
	}
	optional := func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}
	return columns{
		id:        pos[ColumnID],
		title:     pos[ColumnTitle],
		authors:   pos[ColumnAuthors],
		rating:    pos[ColumnAverageRating],
		pages:     pos[ColumnNumPages],
		ratings:   pos[ColumnRatingsCount],
		reviews:   pos[ColumnTextReviewsCount],
		isbn:      optional(ColumnISBN),
		isbn13:    optional(ColumnISBN13),
		lang:      optional(ColumnLanguageCode),
		pubDate:   optional(ColumnPublicationDate),
		publisher: optional(ColumnPublisher),
	}, nil
}

func (c columns) parse(record []string) (core.Book, error) {
	field := func(i int) (string, bool) {
		if i < 0 || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	var b core.Book
	var err error
	if b.ID, err = parseCount(field(c.id)); err != nil {
		return b, fmt.Errorf("%s: %w", ColumnID, err)
	}
	if b.AverageRating, err = parseRating(field(c.rating)); err != nil {
		return b, fmt.Errorf("%s: %w", ColumnAverageRating, err)
	}
	if b.NumPages, err = parseCount(field(c.pages)); err != nil {
		return b, fmt.Errorf("%s: %w", ColumnNumPages, err)
	}
	if b.RatingsCount, err = parseCount(field(c.ratings)); err != nil {
		return b, fmt.Errorf("%s: %w", ColumnRatingsCount, err)
	}
	if b.TextReviewsCount, err = parseCount(field(c.reviews)); err != nil {
		return b, fmt.Errorf("%s: %w", ColumnTextReviewsCount, err)
	}

	b.Title, _ = field(c.title)
	b.Authors, _ = field(c.authors)
	b.ISBN, _ = field(c.isbn)
	b.ISBN13, _ = field(c.isbn13)
	b.LanguageCode, _ = field(c.lang)
	b.PublicationDate, _ = field(c.pubDate)
	b.Publisher, _ = field(c.publisher)
	return b, nil
}

var (
	errMissing   = errors.New("missing value")
	errNegative  = errors.New("negative value")
	errNotFinite = errors.New("not a finite number")
)

// parseCount 解析非负整数；"12.0" 这类整数值浮点也接受。
func parseCount(s string, ok bool) (int64, error) {
	if !ok || s == "" {
		return 0, errMissing
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, errNegative
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, errNotFinite
	}
	if f < 0 {
		return 0, errNegative
	}
	return int64(f), nil
}

func parseRating(s string, ok bool) (float64, error) {
	if !ok || s == "" {
		return 0, errMissing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	return f, nil
}

func valid(b core.Book) bool {
	return b.ID >= 0 &&
		!math.IsNaN(b.AverageRating) && !math.IsInf(b.AverageRating, 0) &&
		b.NumPages >= 0 && b.RatingsCount >= 0 && b.TextReviewsCount >= 0
}
