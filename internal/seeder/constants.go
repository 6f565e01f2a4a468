package seeder

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	titlePrefix          = "Seeded Book "
)

// File permission constants.
const (
	logFilePermission   = 0o600
	directoryPermission = 0o750
)
