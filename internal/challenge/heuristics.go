package challenge

// Anti-cheat heuristics over self-reported session data. All inputs except
// the signed token's issue time come from the client, so every value is
// normalized or capped before it can influence an award. These are free
// functions taking the configured constants as parameters; the service
// passes its injected config.

// countScored reports whether a quiz type is scored as "X correct of N".
// Other types (open-ended and short-answer grading) already report a 0-100
// percentage.
func countScored(quizType string) bool {
	switch quizType {
	case "multiple-choice", "multiple_choice", "mixed":
		return true
	}
	return false
}

// NormalizeScorePct converts a raw score into a 0-100 percentage.
func NormalizeScorePct(score, totalQuestions int, quizType string) int {
	pct := score
	if countScored(quizType) {
		if totalQuestions <= 0 {
			return 0
		}
		pct = 100 * score / totalQuestions
	}
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// CapActiveSeconds clamps client-reported active time to what the server
// can vouch for: [0, serverEstimated * slack]. Slack is >1 to tolerate
// clock drift and thinking-without-interaction.
func CapActiveSeconds(reported, serverEstimated int, slack float64) int {
	if reported < 0 {
		return 0
	}
	if serverEstimated < 0 {
		serverEstimated = 0
	}
	ceiling := int(float64(serverEstimated) * slack)
	if reported > ceiling {
		return ceiling
	}
	return reported
}

// MinPlausibleActiveSeconds is the heuristic floor below which a session is
// suspiciously fast. Logged as a warning, never blocked.
func MinPlausibleActiveSeconds(totalQuestions, perQuestionFloor int) int {
	if totalQuestions < 0 {
		return 0
	}
	return totalQuestions * perQuestionFloor
}

// IsValidSession reports whether a session meets the minimum activity and
// question-count thresholds to earn XP.
func IsValidSession(activeSeconds, totalQuestions, minActiveSeconds, minQuestions int) bool {
	return activeSeconds >= minActiveSeconds && totalQuestions >= minQuestions
}

// XPForFirstValidSession returns the daily base XP for the first valid
// session of a local day, 0 for every later session that day.
func XPForFirstValidSession(firstOfDay bool, baseXP int) int {
	if !firstOfDay {
		return 0
	}
	return baseXP
}
