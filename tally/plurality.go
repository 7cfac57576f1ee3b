// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/quickly-vote/models"
)

// plurality counts one vote per voter for their single positively rated
// option. Voters with no positive rating abstain; voters with several are
// counted for none of them.
func plurality(in *input) models.TallyResult {
	counts := make(map[string]float64, len(in.optionIDs))
	abstained, spoiled := 0, 0

	for _, voter := range in.voters {
		var chosen []string
		for _, opt := range in.optionIDs {
			if in.rating(voter, opt) > 0 {
				chosen = append(chosen, opt)
			}
		}
		switch len(chosen) {
		case 0:
			abstained++
		case 1:
			counts[chosen[0]]++
		default:
			spoiled++
		}
	}

	res := countResult(in, counts)
	if abstained > 0 {
		res.Summary += fmt.Sprintf("\n%s abstained.", english.Plural(abstained, "voter", ""))
	}
	if spoiled > 0 {
		res.Summary += fmt.Sprintf("\n%s selected several options and %s not counted.",
			english.Plural(spoiled, "voter", ""), english.PluralWord(spoiled, "was", "were"))
	}
	return res
}

// approval counts every option a voter rated 1 or higher
func approval(in *input) models.TallyResult {
	counts := make(map[string]float64, len(in.optionIDs))
	for _, voter := range in.voters {
		for _, opt := range in.optionIDs {
			if in.rating(voter, opt) >= 1 {
				counts[opt]++
			}
		}
	}
	return countResult(in, counts)
}

// countResult picks the highest count as winner. Equal counts go to the
// lexicographically smallest option ID.
func countResult(in *input, counts map[string]float64) models.TallyResult {
	voters := len(in.voters)
	results := rankByScore(in, counts, float64(voters))

	if voters == 0 || len(results) == 0 || results[0].Score == 0 {
		res := noVotes(in, voters)
		res.Options = results
		if voters > 0 {
			res.Summary = "No option received a vote.\n\n" + participation(voters)
		}
		return res
	}

	winner := results[0]
	var sb strings.Builder
	for _, r := range results {
		writeCountLine(&sb, r.Text, int(r.Score), r.Percentage, r.OptionID == winner.OptionID)
	}

	if tied := tiedAtTop(results); len(tied) > 1 {
		fmt.Fprintf(&sb, "\n%s tied; %s wins by lowest option ID.\n",
			english.OxfordWordSeries(labels(in, tied), "and"), winner.Text)
	}

	sb.WriteString("\n")
	sb.WriteString(participation(voters))

	return models.TallyResult{
		Winner:   winner.Text,
		WinnerID: winner.OptionID,
		Voters:   voters,
		Options:  results,
		Summary:  sb.String(),
	}
}
