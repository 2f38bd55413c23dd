package types

type DashboardSummary struct {
	TotalEmployees int    `json:"totalEmployees"`
	InCount        int    `json:"inCount"`
	OutCount       int    `json:"outCount"`
	UnknownCount   int    `json:"unknownCount"`
	GeneratedAt    string `json:"generatedAt"`
}

type EmployeeInfo struct {
	EmpID        string  `json:"emp_id"`
	EmployeeID   string  `json:"employee_id"`
	CardNo       string  `json:"card_no"`
	EmployeeName string  `json:"employee_name"`
	Department   *string `json:"department"`
}

type EmployeeList struct {
	Employees []EmployeeInfo `json:"employees"`
	Count     int            `json:"count"`
}

type MappingSnapshot struct {
	DetectorVariant string  `json:"detectorVariant"`
	SwapApplied     bool    `json:"swapApplied"`
	AutoDetected    bool    `json:"autoDetected"`
	ManualOverride  bool    `json:"manualOverride"`
	Samples         int     `json:"samples"`
	InRatio         float64 `json:"inRatio"`
	OutRatio        float64 `json:"outRatio"`
	DetectedAt      string  `json:"detectedAt"`
}

type MappingStatus struct {
	Mapping
	DetectorVariant string            `json:"detectorVariant"`
	AutoDetected    bool              `json:"autoDetected"`
	ManualOverride  bool              `json:"manualOverride"`
	Snapshots       []MappingSnapshot `json:"snapshots"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	SchemaResolved bool   `json:"schemaResolved"`
	ServerTime     string `json:"server_time"`
}
