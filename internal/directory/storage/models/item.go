// Package models contains the persistence models of the storage layer,
// configured to work using GORM as the ORM.
package models

import "time"

// Item is one key/value entry of local storage. The whole employee
// collection lives in a single item, as does the selected language.
type Item struct {
	Key       string `gorm:"column:key;primaryKey;size:64"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName keeps the table name stable regardless of naming strategy.
func (Item) TableName() string {
	return "local_storage"
}
