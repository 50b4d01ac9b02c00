// Package analytics classifies songs into tiers, models where song revenue goes,
// and answers exploratory questions (rankings, genre and career-stage breakdowns,
// rising stars) over the combined artist dataset.
package analytics
