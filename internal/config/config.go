package config

const (
	DefaultTimeZone = "Europe/Paris"

	// Re-categorization runs nightly once the day's imports are in.
	DefaultRecategorizationSchedule = "0 22 * * *"

	// Multipart upload cap for statement files.
	MaxUploadBytes = 32 << 20
)
