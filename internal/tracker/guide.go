package tracker

// #region command-guide
// CommandGuide is the help text the transport shows for the coach commands.
const CommandGuide = `War Coach commands

Setup
  here                  bind notifications to the current channel
  set cal=1800 protein=190 steps=12000 cardio=600 sleep=7.5 discipline=8
                        adjust targets (bad keys/values are skipped)

Daily logs
  am distance=8.2 steps=12034 kcal=640
                        morning cardio report (due 07:30)
  pm wake=05:30 strength=Y calories=1700 protein=195 steps=15200 sleep=8 indulgence=N discipline=9
                        night audit (due 22:00)

Checks
  status                today's AM/PM logs, compliance %, punishments
  punish                punishments queued for tomorrow

Grading: compliance under 80% or a missed audit queues +30 min morning
cardio and a 24h carb cut for the next day.`

// #endregion command-guide
