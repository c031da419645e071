package model

import "regexp"

// slugはURLセーフ（小文字英数とハイフンのみ）
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type Category struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug  string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Title string `gorm:"type:varchar(255);not null" json:"title"`
}

func IsValidSlug(slug string) bool {
	return slug != "" && len(slug) <= 100 && slugPattern.MatchString(slug)
}
