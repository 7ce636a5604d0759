package database

import (
	"fmt"
	"time"

	"shopledger/internal/config"
	"shopledger/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitMySQL opens the connection pool and migrates the schema.
func InitMySQL(cfg *config.MySQLConfig) *gorm.DB {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		config.Logger().Fatalf("failed to connect to MySQL: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		config.Logger().Fatalf("failed to get underlying DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		config.Logger().Fatalf("failed to migrate schema: %v", err)
	}

	DB = db
	config.Logger().Info("MySQL connected")
	return db
}

// Migrate creates or updates every table and seeds the chart of
// accounts. Shared with the sqlite-backed tests.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Shop{},
		&model.User{},
		&model.Product{},
		&model.Inventory{},
		&model.StockMovement{},
		&model.Order{},
		&model.OrderItem{},
		&model.LedgerEntry{},
		&model.GSTRecord{},
		&model.CashBook{},
		&model.BankBook{},
		&model.KhataAccount{},
		&model.ChartOfAccounts{},
		&model.OutboxMessage{},
	)
	if err != nil {
		return err
	}
	return seedChartOfAccounts(db)
}

var defaultAccounts = []model.ChartOfAccounts{
	{AccountCode: "1001", AccountName: model.AccountCash, AccountType: "asset"},
	{AccountCode: "1002", AccountName: model.AccountBank, AccountType: "asset"},
	{AccountCode: "1101", AccountName: model.AccountDebtors, AccountType: "asset"},
	{AccountCode: "4001", AccountName: model.AccountSales, AccountType: "revenue"},
	{AccountCode: "2201", AccountName: "CGST Payable", AccountType: "liability"},
	{AccountCode: "2202", AccountName: "SGST Payable", AccountType: "liability"},
	{AccountCode: "2203", AccountName: "IGST Payable", AccountType: "liability"},
	{AccountCode: "5001", AccountName: "Cost of Goods Sold", AccountType: "expense"},
	{AccountCode: "5101", AccountName: "Discount Given", AccountType: "expense"},
}

func seedChartOfAccounts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.ChartOfAccounts{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(&defaultAccounts).Error
}
