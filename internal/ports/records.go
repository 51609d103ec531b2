package ports

// Record structs crossing the usecase/persistence boundary. Dates are held
// as ISO `2006-01-02` strings and clock times as `15:04[:05]` strings so
// that natural-key comparison and range filtering stay plain string
// operations, matching how the store indexes them.

// RepairEventRecord is one MES repair. Natural key:
// (SerialNumber, RepairDate, RepairTime, FaultCode).
type RepairEventRecord struct {
	ID               uint64
	Model            string
	SerialNumber     string
	RepairDate       string
	RepairTime       string
	RejectionDate    string
	RejectionTime    string
	FaultPosition    string
	Function         string
	FaultCode        string
	Cause            string
	CorrectiveAction string
	Origin           string
	Image            string
	Repairer         string
	Comment          string
}

// TestFailureRecord is one MQS station test. Natural key:
// (TrackID, TestDate, TestTime); Station additionally participates in the
// write-side duplicate check.
type TestFailureRecord struct {
	ID           uint64
	TrackID      string
	TestDate     string
	TestTime     string
	Line         string
	Family       string
	Model        string
	Process      string
	Station      string
	Fixture      string
	NTF          bool
	Prime        bool
	TestCode     string
	TestCodeDesc string
	FailDesc     string
	TestDuration float64
	TestValue    float64
	LowerLimit   float64
	UpperLimit   float64
}

// ShiftYieldRecord is one per-operator shift aggregate. Natural key:
// (OperatorName, Date, Shift, Line). Unlike the other two records it is
// upserted: upstream shift totals may be amended after first export.
type ShiftYieldRecord struct {
	ID           uint64
	OperatorName string
	Date         string
	Journey      string
	Shift        string
	Line         string
	Family       string
	Process      string
	PassCount    int
	FailCount    int
	HandleCount  int
	NTFCount     int
	DefectCount  int
	FTY          float64
	DPHU         float64
	NTFRate      float64
}

// ImportRunRecord is the append-only audit log of one orchestrator run.
type ImportRunRecord struct {
	ID         uint64
	Feed       string
	Status     string
	TotalRows  int
	Reviewed   int
	Created    int
	Updated    int
	Existing   int
	Pending    int
	Malformed  int
	Errors     int
	Note       string
	StartedAt  string
	FinishedAt string
}

type RepairEventFilter struct {
	SerialNumber string
	Model        string
	FaultCode    string
	Repairer     string
	Origin       string
	DateFrom     string
	DateTo       string
	Limit        int
	Offset       int
}

type TestFailureFilter struct {
	TrackID  string
	Line     string
	Family   string
	Process  string
	Station  string
	TestCode string
	NTF      *bool
	Prime    *bool
	DateFrom string
	DateTo   string
	Limit    int
	Offset   int
}

type ShiftYieldFilter struct {
	Line     string
	Family   string
	Process  string
	Shift    string
	Journey  string
	DateFrom string
	DateTo   string
	Limit    int
	Offset   int
}

// YieldSummary aggregates shift yields over a date range.
type YieldSummary struct {
	AvgFTY     float64
	AvgDPHU    float64
	AvgNTF     float64
	TotalUnits int64
	PassUnits  int64
	FailUnits  int64
}

// FailureCount is one (family, test code) failure tally.
type FailureCount struct {
	Family       string
	TestCode     string
	TestCodeDesc string
	Count        int64
}

// FamilyYield is the per-family slice of the dashboard summary.
type FamilyYield struct {
	Family     string
	AvgFTY     float64
	TotalUnits int64
}

// StationCounts holds raw per-station tallies; rate math happens in the
// reporting usecase.
type StationCounts struct {
	Station    string
	Line       string
	Family     string
	TotalTests int64
	Failures   int64
	NTFCount   int64
}

type TopFailuresQuery struct {
	Family   string
	DateFrom string
	DateTo   string
	Limit    int
}

type StationPerformanceQuery struct {
	DateFrom string
	DateTo   string
	Line     string
	Family   string
}

// TrackCorrelation identifies the test failures feeding one shift yield:
// correlation is by field equality, not foreign keys.
type TrackCorrelation struct {
	Date    string
	Line    string
	Family  string
	Process string
}
