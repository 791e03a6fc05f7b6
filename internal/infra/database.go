package infra

import (
	"errors"
	"fmt"

	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection, migrates the schema and seeds the
// reference catalogs the register engine cannot run without.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Surface unique-index violations as gorm.ErrDuplicatedKey so the
		// services can map them to domain error kinds.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	if err := seedReferenceData(db); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return db, nil
}

// RunMigrations creates or updates all tables. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Business{},
		&model.Employee{},
		&model.Customer{},
		&model.Product{},
		&model.Service{},
		&model.SystemParameter{},
		&model.PaymentMethod{},
		&model.MovementKind{},
		&model.Shift{},
		&model.CashMovement{},
		&model.Sale{},
		&model.SaleLineItem{},
		&model.ReceiptCounter{},
	)
}

// seedReferenceData inserts the movement kind catalog, the cash payment
// method and the default tax rate. Idempotent: existing rows are left alone.
func seedReferenceData(db *gorm.DB) error {
	kinds := []model.MovementKind{
		{Code: model.KindOpening, Name: "Shift opening", Direction: model.DirectionIngress, Active: true},
		{Code: model.KindSale, Name: "Sale", Direction: model.DirectionIngress, Active: true},
		{Code: model.KindClosing, Name: "Shift closing", Direction: model.DirectionEgress, Active: true},
		{Code: model.KindManualIn, Name: "Manual deposit", Direction: model.DirectionIngress, Active: true},
		{Code: model.KindManualOut, Name: "Manual withdrawal", Direction: model.DirectionEgress, Active: true},
	}
	for _, k := range kinds {
		var existing model.MovementKind
		err := db.Where("code = ?", k.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&k).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}

	var cash model.PaymentMethod
	err := db.Where("name = ?", "Cash").First(&cash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := db.Create(&model.PaymentMethod{Name: "Cash", Active: true}).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var taxParam model.SystemParameter
	err = db.Where("name = ?", "TAX_RATE_PCT").First(&taxParam).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&model.SystemParameter{Name: "TAX_RATE_PCT", Value: "12", Active: true}).Error
	}
	return err
}
