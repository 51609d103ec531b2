package model

// RepairEvent mirrors the MES feed. The unique index is the natural key;
// no upstream row identifier exists to trust.
type RepairEvent struct {
	ID               uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Model            string `gorm:"column:model;type:text;not null"`
	SerialNumber     string `gorm:"column:serial_number;type:text;not null;uniqueIndex:uq_repair_natural,priority:1"`
	RepairDate       string `gorm:"column:repair_date;type:text;not null;uniqueIndex:uq_repair_natural,priority:2;index:idx_repair_when,priority:1"`
	RepairTime       string `gorm:"column:repair_time;type:text;not null;uniqueIndex:uq_repair_natural,priority:3;index:idx_repair_when,priority:2"`
	RejectionDate    string `gorm:"column:rejection_date;type:text;not null"`
	RejectionTime    string `gorm:"column:rejection_time;type:text;not null"`
	FaultPosition    string `gorm:"column:fault_position;type:text;not null"`
	Function         string `gorm:"column:function;type:text;not null"`
	FaultCode        string `gorm:"column:fault_code;type:text;not null;uniqueIndex:uq_repair_natural,priority:4"`
	Cause            string `gorm:"column:cause;type:text;not null"`
	CorrectiveAction string `gorm:"column:corrective_action;type:text;not null"`
	Origin           string `gorm:"column:origin;type:text;not null"`
	Image            string `gorm:"column:image;type:text;not null;default:'0'"`
	Repairer         string `gorm:"column:repairer;type:text;not null"`
	Comment          string `gorm:"column:comment;type:text;not null;default:''"`
}

func (RepairEvent) TableName() string {
	return "repair_events"
}
