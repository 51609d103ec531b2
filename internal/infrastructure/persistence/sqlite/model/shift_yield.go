package model

// ShiftYield mirrors the YieldTurno feed. The aggregate columns and the
// derived rates are overwritten on conflict because upstream shift totals
// may be amended after first export.
type ShiftYield struct {
	ID           uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	OperatorName string  `gorm:"column:operator_name;type:text;not null;uniqueIndex:uq_yield_natural,priority:1"`
	Date         string  `gorm:"column:date;type:text;not null;uniqueIndex:uq_yield_natural,priority:2;index:idx_yield_date"`
	Journey      string  `gorm:"column:journey;type:text;not null"`
	Shift        string  `gorm:"column:shift;type:text;not null;uniqueIndex:uq_yield_natural,priority:3"`
	Line         string  `gorm:"column:line;type:text;not null;uniqueIndex:uq_yield_natural,priority:4"`
	Family       string  `gorm:"column:family;type:text;not null"`
	Process      string  `gorm:"column:process;type:text;not null"`
	PassCount    int     `gorm:"column:pass_count;not null;default:0"`
	FailCount    int     `gorm:"column:fail_count;not null;default:0"`
	HandleCount  int     `gorm:"column:handle_count;not null;default:0"`
	NTFCount     int     `gorm:"column:ntf_count;not null;default:0"`
	DefectCount  int     `gorm:"column:defect_count;not null;default:0"`
	FTY          float64 `gorm:"column:fty;not null;default:0"`
	DPHU         float64 `gorm:"column:dphu;not null;default:0"`
	NTFRate      float64 `gorm:"column:ntf_rate;not null;default:0"`
}

func (ShiftYield) TableName() string {
	return "shift_yields"
}
