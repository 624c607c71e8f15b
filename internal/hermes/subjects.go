package hermes

const (
	SubjectStats          = "compass.stats"
	SubjectCountryChanges = "compass.country.>"

	StreamName   = "COMPASS_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

// Analysis subjects
func SubjectAnalysisRanked(sessionID string) string {
	return "compass.analysis." + sessionID + ".ranked"
}
func SubjectAnalysisSensitivity(sessionID string) string {
	return "compass.analysis." + sessionID + ".sensitivity"
}

// Country catalogue subjects
func SubjectCountryCreated(countryID string) string { return "compass.country." + countryID + ".created" }
func SubjectCountryUpdated(countryID string) string { return "compass.country." + countryID + ".updated" }
func SubjectCountryDeleted(countryID string) string { return "compass.country." + countryID + ".deleted" }

func SubjectPreferencesSaved(sessionID string) string {
	return "compass.preferences." + sessionID + ".saved"
}
