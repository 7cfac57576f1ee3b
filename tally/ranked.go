// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/quickly-vote/models"
)

// instantRunoff runs ranked-choice rounds until an option reaches a
// majority of ranking voters, one option remains, every remaining option is
// tied, or maxRounds is reached. All options sharing the lowest count are
// eliminated together.
func instantRunoff(in *input, maxRounds int) models.TallyResult {
	// Preference order per voter: rank ascending, option ID breaks malformed ties
	rankings := make(map[string][]string)
	var voters []string
	for _, voter := range in.voters {
		var prefs []string
		for _, opt := range in.optionIDs {
			if in.rating(voter, opt) > 0 {
				prefs = append(prefs, opt)
			}
		}
		if len(prefs) == 0 {
			continue
		}
		sort.SliceStable(prefs, func(i, j int) bool {
			return in.rating(voter, prefs[i]) < in.rating(voter, prefs[j])
		})
		rankings[voter] = prefs
		voters = append(voters, voter)
	}

	if len(voters) == 0 {
		return noVotes(in, 0)
	}

	threshold := len(voters)/2 + 1
	remaining := append([]string(nil), in.optionIDs...)
	eliminated := make(map[string]bool, len(remaining))
	lastRound := make(map[string]int, len(remaining))
	lastCount := make(map[string]int, len(remaining))

	var (
		rounds    []models.Round
		winnerID  string
		tied      []string
		exhausted bool
		byDefault bool
	)

	for round := 1; ; round++ {
		if round > maxRounds {
			exhausted = true
			break
		}

		counts := make(map[string]int, len(remaining))
		for _, voter := range voters {
			for _, opt := range rankings[voter] {
				if !eliminated[opt] {
					counts[opt]++
					break
				}
			}
		}

		order := append([]string(nil), remaining...)
		sort.SliceStable(order, func(i, j int) bool {
			if counts[order[i]] != counts[order[j]] {
				return counts[order[i]] > counts[order[j]]
			}
			return order[i] < order[j]
		})

		r := models.Round{Number: round}
		for _, opt := range order {
			r.Counts = append(r.Counts, models.RoundCount{OptionID: opt, Text: in.text[opt], Count: counts[opt]})
			lastRound[opt] = round
			lastCount[opt] = counts[opt]
		}

		leader := order[0]
		if counts[leader] >= threshold {
			winnerID = leader
			rounds = append(rounds, r)
			break
		}
		if len(order) == 1 {
			winnerID = leader
			byDefault = true
			rounds = append(rounds, r)
			break
		}

		low := counts[order[len(order)-1]]
		if low == counts[leader] {
			tied = order
			rounds = append(rounds, r)
			break
		}

		var kept []string
		for _, opt := range remaining {
			if counts[opt] == low {
				eliminated[opt] = true
				r.Eliminated = append(r.Eliminated, opt)
			} else {
				kept = append(kept, opt)
			}
		}
		remaining = kept
		rounds = append(rounds, r)
	}

	results := make([]models.OptionResult, 0, len(in.optionIDs))
	for _, id := range in.optionIDs {
		results = append(results, models.OptionResult{
			OptionID:   id,
			Text:       in.text[id],
			Score:      float64(lastCount[id]),
			Percentage: percent(float64(lastCount[id]), float64(len(voters))),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if lastRound[a.OptionID] != lastRound[b.OptionID] {
			return lastRound[a.OptionID] > lastRound[b.OptionID]
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.OptionID < b.OptionID
	})
	if winnerID != "" {
		results = promote(results, winnerID)
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	res := models.TallyResult{
		Voters:    len(voters),
		Options:   results,
		Rounds:    rounds,
		Exhausted: exhausted,
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Majority threshold: %s of %s.\n", votes(threshold), english.Plural(len(voters), "voter", ""))
	for i, r := range rounds {
		fmt.Fprintf(&sb, "\nRound %d:\n", r.Number)
		final := i == len(rounds)-1
		for _, c := range r.Counts {
			writeCountLine(&sb, c.Text, c.Count, percent(float64(c.Count), float64(len(voters))), final && c.OptionID == winnerID)
		}
		if len(r.Eliminated) > 0 {
			fmt.Fprintf(&sb, "Eliminated: %s\n", strings.Join(labels(in, r.Eliminated), ", "))
		}
	}
	sb.WriteString("\n")

	switch {
	case exhausted:
		res.Winner = "No winner determined"
		fmt.Fprintf(&sb, "Computation exhausted after %s without a result.\n", english.Plural(maxRounds, "round", ""))
	case len(tied) > 0:
		res.Tie = true
		res.Winner = "Tie between " + english.OxfordWordSeries(labels(in, tied), "and")
		fmt.Fprintf(&sb, "%s.\n", res.Winner)
	case byDefault:
		res.Winner, res.WinnerID = in.text[winnerID], winnerID
		fmt.Fprintf(&sb, "%s wins as the last remaining option.\n", res.Winner)
	default:
		res.Winner, res.WinnerID = in.text[winnerID], winnerID
		fmt.Fprintf(&sb, "%s wins with a majority.\n", res.Winner)
	}
	sb.WriteString("\n")
	sb.WriteString(participation(len(voters)))
	res.Summary = sb.String()

	return res
}
