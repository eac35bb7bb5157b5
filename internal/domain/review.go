package domain

import "time"

// Score bounds for a Review
const (
	MinScore = 1
	MaxScore = 10
)

// Review Model
type Review struct {
	ID       uint      `gorm:"primaryKey" json:"id"`                                                    // Primary key
	TitleID  uint      `gorm:"not null;uniqueIndex:uq_review_author_title" json:"title"`                // Reviewed title
	Title    Title     `gorm:"constraint:OnDelete:CASCADE;" json:"-"`                                   // Owning title
	AuthorID uint      `gorm:"not null;uniqueIndex:uq_review_author_title" json:"-"`                    // Author, one review per title
	Author   User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`                                   // Review author
	Text     string    `gorm:"type:text;not null" json:"text"`                                          // Review body
	Score    int       `gorm:"not null;check:chk_review_score,score >= 1 AND score <= 10" json:"score"` // Score between 1 and 10
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`                                    // Creation timestamp
}

// Comment Model
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`                  // Primary key
	ReviewID uint      `gorm:"not null;index" json:"review"`          // Commented review
	Review   Review    `gorm:"constraint:OnDelete:CASCADE;" json:"-"` // Owning review
	AuthorID uint      `gorm:"not null;index" json:"-"`               // Comment author
	Author   User      `gorm:"constraint:OnDelete:CASCADE;" json:"-"` // Comment author
	Text     string    `gorm:"type:text;not null" json:"text"`        // Comment body
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`  // Creation timestamp
}
