package model

// TestFailure mirrors the MQS feed. Uniqueness is
// (track_id, test_date, test_time); station is stored but does not
// take part in the duplicate check.
type TestFailure struct {
	ID           uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	TrackID      string  `gorm:"column:track_id;type:text;not null;uniqueIndex:uq_test_natural,priority:1;index:idx_test_track"`
	TestDate     string  `gorm:"column:test_date;type:text;not null;uniqueIndex:uq_test_natural,priority:2;index:idx_test_when,priority:1"`
	TestTime     string  `gorm:"column:test_time;type:text;not null;uniqueIndex:uq_test_natural,priority:3;index:idx_test_when,priority:2"`
	Line         string  `gorm:"column:line;type:text;not null"`
	Family       string  `gorm:"column:family;type:text;not null"`
	Model        string  `gorm:"column:model;type:text;not null"`
	Process      string  `gorm:"column:process;type:text;not null"`
	Station      string  `gorm:"column:station;type:text;not null"`
	Fixture      string  `gorm:"column:fixture;type:text;not null"`
	NTF          bool    `gorm:"column:ntf;not null"`
	Prime        bool    `gorm:"column:prime;not null"`
	TestCode     string  `gorm:"column:test_code;type:text;not null"`
	TestCodeDesc string  `gorm:"column:test_code_desc;type:text;not null"`
	FailDesc     string  `gorm:"column:fail_desc;type:text;not null"`
	TestDuration float64 `gorm:"column:test_duration;not null;default:0"`
	TestValue    float64 `gorm:"column:test_value;not null;default:0"`
	LowerLimit   float64 `gorm:"column:lower_limit;not null;default:0"`
	UpperLimit   float64 `gorm:"column:upper_limit;not null;default:0"`
}

func (TestFailure) TableName() string {
	return "test_failures"
}
