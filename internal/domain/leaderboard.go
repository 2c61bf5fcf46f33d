package domain

// Badge marks a leaderboard entry's standing. Ties qualify: every entry
// sharing the top score is a Top entry, every entry sharing the bottom
// score is a Bottom entry, and a single-score board is both.
type Badge struct {
	Top    bool
	Bottom bool
}

// ClassifyBadges computes a badge per item, index-aligned with items.
func ClassifyBadges(items []LeaderboardItem) []Badge {
	badges := make([]Badge, len(items))
	if len(items) == 0 {
		return badges
	}

	max, min := items[0].Score, items[0].Score
	for _, it := range items[1:] {
		if it.Score > max {
			max = it.Score
		}
		if it.Score < min {
			min = it.Score
		}
	}
	for i, it := range items {
		badges[i] = Badge{Top: it.Score == max, Bottom: it.Score == min}
	}
	return badges
}
