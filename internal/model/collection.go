package model

// Collection names double as table names in both backends.
const (
	CollectionCommands      = "commands"
	CollectionPracticeLogs  = "practice_logs"
	CollectionPottyLogs     = "potty_logs"
	CollectionMealLogs      = "meal_logs"
	CollectionNapLogs       = "nap_logs"
	CollectionMilestones    = "milestones"
	CollectionAppointments  = "appointments"
	CollectionWeightEntries = "weight_entries"
	CollectionToothLogs     = "tooth_logs"
	CollectionGroomingLogs  = "grooming_logs"
	CollectionFearLogs      = "fear_logs"
	CollectionAnalytics     = "analytics_snapshots"
)

// Collections lists every record collection, children before parents so
// callers can clear them in order without tripping foreign keys.
func Collections() []string {
	return []string{
		CollectionPracticeLogs,
		CollectionPottyLogs,
		CollectionMealLogs,
		CollectionNapLogs,
		CollectionCommands,
		CollectionMilestones,
		CollectionAppointments,
		CollectionWeightEntries,
		CollectionToothLogs,
		CollectionGroomingLogs,
		CollectionFearLogs,
		CollectionAnalytics,
	}
}
