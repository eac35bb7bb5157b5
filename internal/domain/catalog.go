package domain

// Category Model
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"-"`                      // Primary key
	Name string `gorm:"size:256;not null" json:"name"`            // Display name
	Slug string `gorm:"size:50;uniqueIndex;not null" json:"slug"` // Unique slug used in URLs and title payloads
}

// Genre Model
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"-"`                      // Primary key
	Name string `gorm:"size:256;not null" json:"name"`            // Display name
	Slug string `gorm:"size:50;uniqueIndex;not null" json:"slug"` // Unique slug used in URLs and title payloads
}

// Title Model
type Title struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                                           // Primary key
	Name        string    `gorm:"size:256;not null;index" json:"name"`                            // Title name
	Year        int       `gorm:"not null;index" json:"year"`                                     // Release year
	Description *string   `gorm:"type:text" json:"description"`                                   // Optional description
	CategoryID  *uint     `gorm:"index" json:"-"`                                                 // Nullable foreign key to Category
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category"` // Category, nulled when the category is deleted
	Genres      []Genre   `gorm:"many2many:title_genres;" json:"genre"`                           // Zero or more genres
	Rating      *float64  `gorm:"->;-:migration" json:"rating"`                                   // Average review score, computed on read
}
