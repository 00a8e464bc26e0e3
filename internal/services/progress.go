package services

// CalculateProgress derives a subject's completion percentage. Each learned
// concept is worth 10 points up to a 50-point cap; submitting documentation
// adds the remaining 50 as an all-or-nothing bonus. The result is always in
// [0, 100] and hits 100 only when documentation is in and all five concepts
// are learned.
func CalculateProgress(learnedConcepts int, documentationSubmitted bool) int {
	if learnedConcepts < 0 {
		learnedConcepts = 0
	}
	progress := learnedConcepts * 10
	if progress > 50 {
		progress = 50
	}
	if documentationSubmitted {
		progress += 50
	}
	return progress
}
