package model

// ImportRun is the append-only audit log of orchestrator runs. There is no
// persisted cursor between runs; this table exists for operators, not for
// resume logic.
type ImportRun struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Feed       string `gorm:"column:feed;type:text;not null;index"`
	Status     string `gorm:"column:status;type:text;not null"`
	TotalRows  int    `gorm:"column:total_rows;not null;default:0"`
	Reviewed   int    `gorm:"column:reviewed;not null;default:0"`
	Created    int    `gorm:"column:created;not null;default:0"`
	Updated    int    `gorm:"column:updated;not null;default:0"`
	Existing   int    `gorm:"column:existing;not null;default:0"`
	Pending    int    `gorm:"column:pending;not null;default:0"`
	Malformed  int    `gorm:"column:malformed;not null;default:0"`
	Errors     int    `gorm:"column:errors;not null;default:0"`
	Note       string `gorm:"column:note;type:text;not null;default:''"`
	StartedAt  string `gorm:"column:started_at;type:text;not null;index"`
	FinishedAt string `gorm:"column:finished_at;type:text;not null"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}
