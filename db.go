package main

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/account"
	"github.com/TurnIfCode/backend-gogo/pkg/database"
	"github.com/TurnIfCode/backend-gogo/pkg/logger"
	"github.com/TurnIfCode/backend-gogo/pkg/money"
)

func openDB(cfg Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Env == "development" {
		level = gormlogger.Info
	}
	return database.Open(cfg.DSN, database.Options{
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		LogLevel:     level,
	})
}

// migrate runs AutoMigrate per model so one failing table does not block
// the rest. Failures are logged, not fatal.
func migrate(db *gorm.DB) {
	// roles first so the users FK can be created
	steps := []struct {
		table string
		model interface{}
	}{
		{"roles", &models.Role{}},
		{"users", &models.User{}},
		{"user_photos", &models.UserPhoto{}},
		{"refresh_tokens", &models.RefreshToken{}},
		{"wallets", &models.Wallet{}},
		{"coins", &models.Coin{}},
		{"banks", &models.Bank{}},
		{"user_topup_transactions", &models.TopupTransaction{}},
		{"live_streams", &models.LiveStream{}},
		{"live_viewers", &models.LiveViewer{}},
	}
	for _, s := range steps {
		if err := db.AutoMigrate(s.model); err != nil {
			logger.Warnf("migration warning (%s): %v", s.table, err)
		}
	}
}

var defaultCoins = []struct {
	coin, price, final string
	bigDeal            bool
}{
	{"10", "1500", "1500", false},
	{"50", "7500", "7500", false},
	{"100", "15000", "15000", false},
	{"500", "75000", "70000", true},
	{"1000", "150000", "135000", true},
}

func seedDB(db *gorm.DB, cfg Config) {
	roles := []models.Role{
		{Name: models.RoleAdministrator, Description: "full access"},
		{Name: models.RoleUser, Description: "regular user"},
	}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			if err := db.Create(&r).Error; err != nil {
				logger.Warnf("failed to seed role %s: %v", r.Name, err)
			}
		}
	}

	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		_, err := account.Create(db, account.Input{
			Username:    "admin",
			Name:        "Administrator",
			Email:       "admin@example.com",
			PhoneNumber: "00000000000",
			Password:    cfg.AdminPassword,
			Role:        models.RoleAdministrator,
		}, "system")
		if err != nil {
			logger.Errorf("failed to seed admin user: %v", err)
		} else {
			logger.Info("seeded admin user: username=admin")
		}
	}

	if cfg.BankName != "" && cfg.BankAccountNumber != "" {
		var banks int64
		db.Model(&models.Bank{}).Count(&banks)
		if banks == 0 {
			bank := models.Bank{ID: uuid.NewString(), BankName: cfg.BankName, AccountNumber: cfg.BankAccountNumber}
			if err := db.Create(&bank).Error; err != nil {
				logger.Warnf("failed to seed bank: %v", err)
			}
		}
	}

	var coins int64
	db.Model(&models.Coin{}).Count(&coins)
	if coins == 0 {
		now := time.Now()
		for _, c := range defaultCoins {
			coin := models.Coin{
				ID:         uuid.NewString(),
				CoinAmount: money.MustParse(c.coin),
				Price:      money.MustParse(c.price),
				IsBigDeal:  c.bigDeal,
				FinalPrice: money.MustParse(c.final),
				CreatedBy:  "system",
				CreatedAt:  now,
				UpdatedBy:  "system",
				UpdatedAt:  now,
			}
			if err := db.Create(&coin).Error; err != nil {
				logger.Warnf("failed to seed coin %s: %v", c.coin, err)
			}
		}
	}
}
