// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"reverse-market/internal/database"
	"reverse-market/internal/models"
)

// NewDB opens an isolated in-memory SQLite database with every model migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, group := range database.Models() {
		if err := db.AutoMigrate(group...); err != nil {
			t.Fatalf("failed to migrate database: %v", err)
		}
	}
	return db
}

// Seller inserts an active, store-approved seller
func Seller(t testing.TB, db *gorm.DB, phone string) *models.User {
	t.Helper()
	name := "Store " + phone
	u := &models.User{
		PhoneNumber:     phone,
		PasswordHash:    "x",
		FirstName:       "Seller",
		LastName:        phone,
		Gender:          "male",
		City:            "Riyadh",
		District:        "Olaya",
		UserType:        models.UserTypeSeller,
		StoreName:       &name,
		IsActive:        true,
		IsStoreApproved: true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create seller: %v", err)
	}
	return u
}

// Buyer inserts an active buyer
func Buyer(t testing.TB, db *gorm.DB, phone string) *models.User {
	t.Helper()
	u := &models.User{
		PhoneNumber:     phone,
		PasswordHash:    "x",
		FirstName:       "Buyer",
		LastName:        phone,
		Gender:          "female",
		City:            "Jeddah",
		District:        "Rawdah",
		UserType:        models.UserTypeBuyer,
		IsActive:        true,
		IsStoreApproved: true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to create buyer: %v", err)
	}
	return u
}

// Tree is a seeded category path
type Tree struct {
	Category *models.Category
	Sub1     *models.SubCategory1
	Sub2     *models.SubCategory2
}

// CategoryTree inserts one category with one subcategory at each level
func CategoryTree(t testing.TB, db *gorm.DB, name string) Tree {
	t.Helper()
	c := &models.Category{Name: name, IsActive: true}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	s1 := &models.SubCategory1{CategoryID: c.ID, Name: name + " sub", IsActive: true}
	if err := db.Create(s1).Error; err != nil {
		t.Fatalf("failed to create subcategory: %v", err)
	}
	s2 := &models.SubCategory2{SubCategory1ID: s1.ID, Name: name + " leaf", IsActive: true}
	if err := db.Create(s2).Error; err != nil {
		t.Fatalf("failed to create subcategory: %v", err)
	}
	return Tree{Category: c, Sub1: s1, Sub2: s2}
}
