package constants

import "time"

const (
	AppName            = "foodlog"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/foodlog/foodlog.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Storage keys
	LogsKey     = "NutritionLogs"
	SettingsKey = "Settings"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "foodlog-"

	// LockfileName guards the storage against a second writer process
	LockfileName = "foodlog.lock"

	// WaterEntryName is the display label of every water entry
	WaterEntryName = "Water"

	// Calories per gram of each macro
	KcalPerGramProtein = 4.0
	KcalPerGramCarbs   = 4.0
	KcalPerGramFat     = 9.0

	// Even split used by the macro chart when there is nothing to divide
	FallbackProteinShare = 0.33
	FallbackCarbsShare   = 0.33
	FallbackFatsShare    = 0.34

	// LitersToFluidOunces converts liters to US fluid ounces
	LitersToFluidOunces = 33.814

	// DefaultAnalysisDelay is how long the stub analyzer "thinks"
	DefaultAnalysisDelay = 2 * time.Second

	// Environment variables read outside of kong flag parsing
	EnvDBConnection = "FOODLOG_DB_CONNECTION"
	EnvFileName     = ".env"

	// Analyzer backends selectable with --analyzer
	AnalyzerStub        = "stub"
	AnalyzerRekognition = "rekognition"

	// Rekognition label detection limits
	RekognitionMaxLabels     = 5
	RekognitionMinConfidence = 75
)

// WaterPresets are the quick-add amounts in liters, in display order.
var WaterPresets = []float64{0.25, 0.5, 0.75, 1.0, 1.5, 2.0}

// SessionState represents the current state of the TUI application
type SessionState int

const (
	StateLogs SessionState = iota
	StateToday
	StateAccount
	StateAddMenu
	StateFoodForm
	StateWaterForm
	StateScanPath
	StateScanAnalyzing
	StateScanReview
	StateDetail
	StateEditLog
	StateEditSettings
	StateConfirmDelete
)

// TabCount is the number of top-level tabs (Logs, Today, Account)
const TabCount = 3
