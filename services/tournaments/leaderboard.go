package tournaments

import "sort"

// ComputeLeaderboard derives standings from scratch on every call: wins and
// points are a pure fold over resolved matches, never an incrementally
// patched counter. Byes count for neither wins nor points.
func ComputeLeaderboard(t *Tournament) []LeaderboardEntry {
	wins := make(map[string]int)
	points := make(map[string]int)

	for _, round := range t.Brackets {
		for _, match := range round.Matches {
			if !match.resolved() || match.isBye() {
				continue
			}
			wins[match.WinnerID]++
			points[match.Participant1] += match.Score1
			points[match.Participant2] += match.Score2
		}
	}

	entries := make([]LeaderboardEntry, 0, len(t.Participants))
	for _, p := range t.Participants {
		entries = append(entries, LeaderboardEntry{
			UserID: p.UserID,
			Wins:   wins[p.UserID],
			Points: points[p.UserID],
		})
	}

	registeredAt := func(userID string) int64 {
		if p := t.participant(userID); p != nil {
			return p.RegisteredAt.UnixNano()
		}
		return 0
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return registeredAt(a.UserID) < registeredAt(b.UserID)
	})

	// Dense ranks: equal (wins, points) share a rank, the next distinct pair
	// gets the following rank.
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Wins != entries[i-1].Wins || entries[i].Points != entries[i-1].Points {
			rank++
		}
		entries[i].Rank = rank
	}
	return entries
}

// computeRewards writes one unclaimed reward intent per podium place.
func computeRewards(entries []LeaderboardEntry, pool PrizePool) []Reward {
	podium := []struct {
		rewardType RewardType
		amount     int
	}{
		{RewardNFT, pool.First},
		{RewardToken, pool.Second},
		{RewardBadge, pool.Third},
	}

	var rewards []Reward
	for i, place := range podium {
		if i >= len(entries) {
			break
		}
		rewards = append(rewards, Reward{
			UserID: entries[i].UserID,
			Type:   place.rewardType,
			Amount: place.amount,
		})
	}
	return rewards
}
