package store

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const SnapshotBatchSize = 500

type Dao struct {
	db *gorm.DB
}

func NewDao(url, scheme, user, passwd string) (*Dao, error) {
	dsn := user + ":" + passwd + "@tcp(" + url + ")/" + scheme + "?charset=utf8mb4&parseTime=True"
	return OpenDao(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

// OpenDao opens the database and migrates the snapshot table.
func OpenDao(dialector gorm.Dialector, config *gorm.Config) (*Dao, error) {
	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("open database err: %w", err)
	}
	if !config.DryRun {
		if err := db.AutoMigrate(&PriceSnapshot{}); err != nil {
			return nil, fmt.Errorf("migrate err: %w", err)
		}
	}
	return &Dao{db: db}, nil
}

func (dao *Dao) SaveSnapshots(snapshots []*PriceSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return dao.db.CreateInBatches(snapshots, SnapshotBatchSize).Error
}

func (dao *Dao) SelectSnapshots(market string, limit int) ([]*PriceSnapshot, error) {
	snapshots := make([]*PriceSnapshot, 0)
	res := dao.db.Where("market = ?", market).Order("slot desc").Limit(limit).Find(&snapshots)
	return snapshots, res.Error
}
