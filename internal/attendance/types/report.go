package types

// Mapping is embedded in every report: how stored polarity was read.
type Mapping struct {
	MappingVariant string `json:"mappingVariant"`
	SwapApplied    bool   `json:"swapApplied"`
}

// Identity is the employee header of a single-card report.
type Identity struct {
	EmployeeName string  `json:"employee_name"`
	CardNo       string  `json:"card_no"`
	Department   *string `json:"department"`
}

// SegmentTotals are the IN/OUT segment minutes of a period.
type SegmentTotals struct {
	TotalInMinutes  int     `json:"totalInMinutes"`
	TotalOutMinutes int     `json:"totalOutMinutes"`
	TotalInHHMM     *string `json:"totalInHHMM"`
	TotalOutHHMM    *string `json:"totalOutHHMM"`
}

type Transaction struct {
	Type      string `json:"type"` // IN | OUT
	Time      string `json:"time"`
	Timestamp string `json:"timestamp"`
	Inferred  bool   `json:"inferred"`
}

type Interval struct {
	Date              string  `json:"date"`
	In                string  `json:"in"`
	Out               string  `json:"out"`
	InTime            string  `json:"in_time"`
	OutTime           string  `json:"out_time"`
	InDurationMinutes int     `json:"in_duration_minutes"`
	InDurationHHMM    *string `json:"in_duration_hhmm"`
}

// SessionRow is an Interval rendered for display with 12h clock times.
type SessionRow struct {
	Date            string  `json:"date"`
	In              string  `json:"in"`
	Out             string  `json:"out"`
	Duration        *string `json:"duration"`
	InRaw           string  `json:"in_raw"`
	OutRaw          string  `json:"out_raw"`
	DurationMinutes int     `json:"duration_minutes"`
}

type DailyReport struct {
	Identity
	Date             string   `json:"date"`
	FirstIn          *string  `json:"first_in"`
	LastOut          *string  `json:"last_out"`
	DurationMinutes  *int     `json:"duration_minutes"`
	DurationHHMM     *string  `json:"duration_hhmm"`
	Duration         *string  `json:"duration"`
	MissingPunch     bool     `json:"missing_punch"`
	MissingOut       bool     `json:"missing_out"`
	TotalWorkMinutes *int     `json:"total_work_minutes"`
	Notes            []string `json:"notes"`

	Rows         []SessionRow  `json:"rows"`
	Transactions []Transaction `json:"transactions"`
	Intervals    []Interval    `json:"intervals"`

	TotalInMinutes  int     `json:"total_in_minutes"`
	TotalOutMinutes int     `json:"total_out_minutes"`
	TotalIn         *string `json:"total_in"`
	TotalOut        *string `json:"total_out"`
	SegmentTotals

	Mapping
}

// DayRecord is one day of a monthly report.
type DayRecord struct {
	Date            string  `json:"date"`
	FirstIn         *string `json:"first_in"`
	LastOut         *string `json:"last_out"`
	DurationMinutes *int    `json:"duration_minutes"`
	DurationHHMM    *string `json:"duration_hhmm"`
	MissingPunch    bool    `json:"missing_punch"`
}

type MonthlyReport struct {
	Identity
	Month   string      `json:"month"`
	Records []DayRecord `json:"records"`

	TotalDays             int     `json:"total_days"`
	MissingPunchDays      int     `json:"missing_punch_days"`
	TotalMinutes          int     `json:"total_minutes"`
	TotalDurationHHMM     *string `json:"total_duration_hhmm"`
	TotalDurationReadable *string `json:"total_duration_readable"`
	TotalWorkMinutes      int     `json:"total_work_minutes"`
	AvgMinutesPerDay      int     `json:"avg_minutes_per_day"`
	AvgDurationHHMM       *string `json:"avg_duration_hhmm"`
	AvgHoursPerDay        string  `json:"avg_hours_per_day"`
	SegmentTotals

	Mapping
}

type MonthBucket struct {
	Month                 string  `json:"month"`
	WorkedDays            int     `json:"worked_days"`
	MissingPunchDays      int     `json:"missing_punch_days"`
	TotalMinutes          int     `json:"total_minutes"`
	AverageMinutesPerDay  *int    `json:"average_minutes_per_day"`
	AverageDurationHHMM   *string `json:"average_duration_hhmm"`
	TotalDurationHHMM     *string `json:"total_duration_hhmm"`
	TotalDurationReadable *string `json:"total_duration_readable"`
}

type YearlyReport struct {
	Identity
	Year   string        `json:"year"`
	Months []MonthBucket `json:"months"`

	TotalWorkedDays       int     `json:"total_worked_days"`
	MissingPunchDays      int     `json:"missing_punch_days"`
	TotalMinutes          int     `json:"total_minutes"`
	TotalDurationHHMM     *string `json:"total_duration_hhmm"`
	TotalDurationReadable *string `json:"total_duration_readable"`
	TotalWorkMinutes      int     `json:"total_work_minutes"`
	SegmentTotals

	Mapping
}
