package core

import "strconv"

// Book 是书目中的一条记录（CatalogItem）。
// 数值字段在加载阶段已完成校验：AverageRating 有限，其余计数非负。
type Book struct {
	ID               int64   `json:"book_id"`
	Title            string  `json:"title"`
	Authors          string  `json:"authors"` // 已去除首尾空白
	AverageRating    float64 `json:"average_rating"`
	NumPages         int64   `json:"num_pages"`
	RatingsCount     int64   `json:"ratings_count"`
	TextReviewsCount int64   `json:"text_reviews_count"`

	// 可选列，缺失不影响加载
	ISBN            string `json:"isbn,omitempty"`
	ISBN13          string `json:"isbn13,omitempty"`
	LanguageCode    string `json:"language_code,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
}

// ToItem 将 Book 包装为 Pipeline 中流转的 Item。
// Features 写入数值字段，供 DSL 的 item.features 读取。
func (b Book) ToItem() *Item {
	it := NewItem(b.ID)
	it.Features["average_rating"] = b.AverageRating
	it.Features["num_pages"] = float64(b.NumPages)
	it.Features["ratings_count"] = float64(b.RatingsCount)
	it.Features["text_reviews_count"] = float64(b.TextReviewsCount)
	it.Book = &b
	return it
}

// BookOf 取回 Item 携带的 Book。
func BookOf(it *Item) (Book, bool) {
	if it == nil || it.Book == nil {
		return Book{}, false
	}
	return *it.Book, true
}

// Key 返回 Book ID 的字符串形式，用于 Store key / 有序集合成员。
func (b Book) Key() string {
	return strconv.FormatInt(b.ID, 10)
}
