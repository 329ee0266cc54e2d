package day

// #region punishment-labels
// Punishment labels. Queued against the date that generated them; the label
// text says "tomorrow" because consumers read today's queue as tomorrow's
// sentence. The engine never rolls entries forward.
const (
	PunishExtraCardio  = "+30 min morning cardio"
	PunishCarbCut      = "24h carb cut"
	PunishDoubleCardio = "Double cardio tomorrow"
	PunishHalfCarbCut  = "50% carb cut for 24h"
)

// EveningFailPunishments is the sentence for a sub-80% compliance score or a
// missed night audit.
func EveningFailPunishments() []string {
	return []string{PunishExtraCardio, PunishCarbCut}
}

// MorningFailPunishments is the sentence for a missing or substandard
// morning report at the AM deadline.
func MorningFailPunishments() []string {
	return []string{PunishDoubleCardio, PunishHalfCarbCut}
}

// #endregion punishment-labels

// #region morning-standard
// MinMorningDistanceKm is the fixed distance floor for the morning verdict
// and the AM-deadline check. Not configurable, matching the grading rules.
const MinMorningDistanceKm = 8.0

// #endregion morning-standard
