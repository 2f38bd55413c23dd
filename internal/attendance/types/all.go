package types

// DailyAllRow is one employee in the all-employee daily report.
type DailyAllRow struct {
	EmployeeName    string  `json:"employee_name"`
	CardNo          string  `json:"card_no"`
	Department      *string `json:"department"`
	FirstIn         *string `json:"first_in"`
	LastOut         *string `json:"last_out"`
	DurationMinutes *int    `json:"duration_minutes"`
	DurationHHMM    *string `json:"duration_hhmm"`
	TotalInMinutes  int     `json:"total_in_minutes"`
	TotalOutMinutes int     `json:"total_out_minutes"`
	TotalInHHMM     *string `json:"total_in_hhmm"`
	TotalOutHHMM    *string `json:"total_out_hhmm"`
	SessionsCount   int     `json:"sessions_count"`
	MissingPunch    bool    `json:"missing_punch"`
}

type DailyAllSummary struct {
	TotalEmployees        int     `json:"total_employees"`
	TotalWorkingDays      int     `json:"total_working_days"`
	TotalInMinutes        int     `json:"total_in_minutes"`
	TotalOutMinutes       int     `json:"total_out_minutes"`
	TotalDurationMinutes  int     `json:"total_duration_minutes"`
	TotalSessions         int     `json:"total_sessions"`
	MissingPunchCount     int     `json:"missing_punch_count"`
	TotalInHHMM           *string `json:"total_in_hhmm"`
	TotalOutHHMM          *string `json:"total_out_hhmm"`
	TotalDurationHHMM     *string `json:"total_duration_hhmm"`
	TotalDurationReadable *string `json:"total_duration_readable"`
}

type DailyAllReport struct {
	Date    string          `json:"date"`
	Rows    []DailyAllRow   `json:"rows"`
	Summary DailyAllSummary `json:"summary"`
	Mapping
}

// PeriodAllRow is one employee in the all-employee monthly or yearly report.
type PeriodAllRow struct {
	EmployeeName          string  `json:"employee_name"`
	CardNo                string  `json:"card_no"`
	Department            *string `json:"department"`
	WorkingDays           int     `json:"working_days"`
	TotalMinutes          int     `json:"total_minutes"`
	TotalDurationHHMM     *string `json:"total_duration_hhmm"`
	TotalDurationReadable *string `json:"total_duration_readable"`
	AvgMinutesPerDay      int     `json:"avg_minutes_per_day"`
	AvgDurationHHMM       *string `json:"avg_duration_hhmm"`
	MissingPunchDays      int     `json:"missing_punch_days"`
	SessionsCount         int     `json:"sessions_count"`
	TotalInMinutes        int     `json:"total_in_minutes"`
	TotalOutMinutes       int     `json:"total_out_minutes"`
	TotalInHHMM           *string `json:"total_in_hhmm"`
	TotalOutHHMM          *string `json:"total_out_hhmm"`
}

type PeriodAllSummary struct {
	TotalEmployees    int     `json:"total_employees"`
	TotalWorkingDays  int     `json:"total_working_days"`
	TotalInMinutes    int     `json:"total_in_minutes"`
	TotalOutMinutes   int     `json:"total_out_minutes"`
	TotalWorkMinutes  int     `json:"total_work_minutes"`
	TotalSessions     int     `json:"total_sessions"`
	MissingPunchCount int     `json:"missing_punch_count"`
	TotalInHHMM       *string `json:"total_in_hhmm"`
	TotalOutHHMM      *string `json:"total_out_hhmm"`
	TotalWorkHHMM     *string `json:"total_work_hhmm"`
	TotalWorkReadable *string `json:"total_work_readable"`
}

// PeriodAllReport carries either Month or Year.
type PeriodAllReport struct {
	Month   string           `json:"month,omitempty"`
	Year    string           `json:"year,omitempty"`
	Rows    []PeriodAllRow   `json:"rows"`
	Summary PeriodAllSummary `json:"summary"`
	Mapping
}
