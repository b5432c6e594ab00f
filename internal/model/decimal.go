package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Decimal is a money column stored without binary floating point on every driver.
type Decimal struct {
	decimal.Decimal
}

func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{Decimal: d}
}

// GormDBDataType picks a lossless column type per dialect. SQLite would give
// any numeric declaration REAL storage, so the value is kept as text there.
func (Decimal) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "numeric"
	case "mysql":
		return "decimal(65,30)"
	default:
		return "text"
	}
}
