package domain

type TimeLogType string

const (
	LogTracked TimeLogType = "TRACKED"
	LogManual  TimeLogType = "MANUAL"
	LogIdle    TimeLogType = "IDLE"
)

type TimeLogSource string

const (
	SourceWebTimer TimeLogSource = "WEB_TIMER"
	SourceDesktop  TimeLogSource = "DESKTOP"
	SourceMobile   TimeLogSource = "MOBILE"
	SourceBrowser  TimeLogSource = "BROWSER_EXTENSION"
)

type TimesheetStatus string

const (
	TimesheetPending  TimesheetStatus = "PENDING"
	TimesheetInReview TimesheetStatus = "IN_REVIEW"
	TimesheetApproved TimesheetStatus = "APPROVED"
)

// ValidLogTypes is the canonical set of accepted log type strings.
var ValidLogTypes = map[string]bool{
	"TRACKED": true, "MANUAL": true, "IDLE": true,
}

type Permission string

const (
	PermChangeSelectedEmployee Permission = "CHANGE_SELECTED_EMPLOYEE"
	PermDeleteTime             Permission = "TIME_TRACKER_DELETE_TIME"
	PermApproveTimesheet       Permission = "CAN_APPROVE_TIMESHEET"
)
