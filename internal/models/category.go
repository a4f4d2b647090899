package models

import "time"

// Category is the top level of the three-level category tree
type Category struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Description   string         `gorm:"size:500" json:"description,omitempty"`
	Image         string         `gorm:"size:500" json:"image,omitempty"`
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`
	SortOrder     int            `gorm:"default:0" json:"sort_order"`
	CreatedAt     time.Time      `json:"created_at"`
	SubCategories []SubCategory1 `gorm:"foreignKey:CategoryID" json:"sub_categories,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

// SubCategory1 is the second level, under a Category
type SubCategory1 struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CategoryID    uint           `gorm:"not null;index" json:"category_id"`
	Category      *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	SubCategories []SubCategory2 `gorm:"foreignKey:SubCategory1ID" json:"sub_categories,omitempty"`
}

func (SubCategory1) TableName() string {
	return "sub_categories1"
}

// SubCategory2 is the leaf level, under a SubCategory1
type SubCategory2 struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	SubCategory1ID uint          `gorm:"column:sub_category1_id;not null;index" json:"sub_category1_id"`
	SubCategory1   *SubCategory1 `gorm:"foreignKey:SubCategory1ID" json:"sub_category1,omitempty"`
	Name           string        `gorm:"size:100;not null" json:"name"`
	IsActive       bool          `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (SubCategory2) TableName() string {
	return "sub_categories2"
}

// StoreCategory is a seller's declared specialization, used to match requests
type StoreCategory struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"not null;index" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID" json:"-"`
	CategoryID     uint          `gorm:"not null;index" json:"category_id"`
	Category       *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SubCategory1ID *uint         `gorm:"column:sub_category1_id;index" json:"sub_category1_id,omitempty"`
	SubCategory1   *SubCategory1 `gorm:"foreignKey:SubCategory1ID" json:"sub_category1,omitempty"`
	SubCategory2ID *uint         `gorm:"column:sub_category2_id;index" json:"sub_category2_id,omitempty"`
	SubCategory2   *SubCategory2 `gorm:"foreignKey:SubCategory2ID" json:"sub_category2,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (StoreCategory) TableName() string {
	return "store_categories"
}

// Path renders "Category > Sub1 > Sub2" for whichever levels are loaded
func (sc *StoreCategory) Path() string {
	return CategoryPath(sc.Category, sc.SubCategory1, sc.SubCategory2)
}

// CategoryPath joins the names of the given levels, skipping nil ones.
// A missing top level renders as "غير محدد" (unspecified).
func CategoryPath(c *Category, s1 *SubCategory1, s2 *SubCategory2) string {
	path := "غير محدد"
	if c != nil {
		path = c.Name
	}
	if s1 != nil {
		path += " > " + s1.Name
	}
	if s2 != nil {
		path += " > " + s2.Name
	}
	return path
}
