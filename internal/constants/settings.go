package constants

// Units selects how water volumes are displayed
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

const (
	// Setting names accepted by `foodlog settings set`
	SettingDisplayName   = "display_name"
	SettingNotifications = "notifications_enabled"
	SettingDarkMode      = "dark_mode"
	SettingUnits         = "units"
	SettingWaterGoal     = "water_goal_liters"
	SettingTimezone      = "timezone"

	// Default Settings Values
	DefaultDisplayName          = "John Doe"
	DefaultNotificationsEnabled = true
	DefaultDarkMode             = false
	DefaultUnits                = UnitsMetric
	DefaultWaterGoalLiters      = 2.5
	DefaultTimezone             = "Local" // Use system local timezone by default
)
