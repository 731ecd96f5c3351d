package database

import (
	"fmt"
	"log"
	"os"

	"freshbytes-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=freshbytes port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Seller{},
		&models.Category{},
		&models.Subcategory{},
		&models.Product{},
		&models.ProductImage{},
		&models.Promo{},
		&models.PromoProduct{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.Payment{},
	); err != nil {
		return err
	}

	// AutoMigrate will not fix an existing wrong unique constraint. If the DB
	// predates the composite index on promo_products, duplicate join rows can
	// exist and the insert path starts failing once the index appears.
	if err := repairPromoProductsUniqueIndex(db); err != nil {
		return err
	}

	return nil
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@freshbytes.com"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
		Name:     "Admin User",
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}

func repairPromoProductsUniqueIndex(db *gorm.DB) error {
	// Drop duplicate (promo_id, product_id) rows, keeping the oldest, then
	// make sure the composite unique index exists. Safe to run repeatedly.
	if err := db.Exec(`
		DELETE FROM promo_products a
		USING promo_products b
		WHERE a.promo_id = b.promo_id
		  AND a.product_id = b.product_id
		  AND a.created_at > b.created_at;
	`).Error; err != nil {
		return fmt.Errorf("failed to deduplicate promo_products: %w", err)
	}

	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_promo_product
		ON promo_products (promo_id, product_id);
	`).Error; err != nil {
		return fmt.Errorf("failed to ensure promo_products unique index: %w", err)
	}

	return nil
}
