package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kosku_backend/internals/configs"
	billingModel "kosku_backend/internals/features/billing/model"
	branchModel "kosku_backend/internals/features/branches/model"
	contractModel "kosku_backend/internals/features/contracts/model"
	notifModel "kosku_backend/internals/features/notifications/model"
	roomModel "kosku_backend/internals/features/rooms/model"
	userModel "kosku_backend/internals/features/users/model"
	utilModel "kosku_backend/internals/features/utilities/model"
)

var DB *gorm.DB

func ConnectDB() {
	log.Println("🔌 Koneksi ke PostgreSQL...")

	sslmode := getenv("DB_SSLMODE", "require")
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=kosku&options=-c statement_timeout=3000",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
		sslmode,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // 👍 cocok untuk PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger: configs.NewGormLogger(),
	})
	if err != nil {
		log.Fatalf("❌ Gagal konek DB: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

// Migrate menyelaraskan skema + partial unique index
// (invoices per kontrak-bulan, usage per room-contract-service-month).
func Migrate() {
	err := DB.AutoMigrate(
		&userModel.User{},
		&userModel.TokenBlacklist{},
		&branchModel.Branch{},
		&branchModel.EmployeeAssignment{},
		&roomModel.RoomType{},
		&roomModel.Room{},
		&roomModel.RoomOccupant{},
		&contractModel.Contract{},
		&utilModel.Service{},
		&utilModel.UtilityUsage{},
		&billingModel.Invoice{},
		&billingModel.Payment{},
		&notifModel.Notification{},
	)
	if err != nil {
		log.Fatalf("❌ Gagal migrasi skema: %v", err)
	}
	log.Println("✅ Skema sinkron.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	// ping ringan supaya pool keisi & siap
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
