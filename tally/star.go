// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/quickly-vote/models"
)

// star runs Score Then Automatic Runoff. Missing ratings count as 0 stars.
// The two highest scorers meet in a runoff decided by how many voters rated
// one strictly above the other; an even runoff goes to the higher scorer.
func star(in *input) models.TallyResult {
	scores := make(map[string]float64, len(in.optionIDs))
	var total float64
	for _, voter := range in.voters {
		for _, opt := range in.optionIDs {
			r := float64(in.rating(voter, opt))
			scores[opt] += r
			total += r
		}
	}

	voters := len(in.voters)
	results := rankByScore(in, scores, total)

	scored := 0
	for _, r := range results {
		if r.Score > 0 {
			scored++
		}
	}

	var sb strings.Builder
	sb.WriteString("**Scoring Round:**\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "%s: %s\n", r.Text, english.Plural(int(r.Score), "star", ""))
	}

	if scored == 0 {
		res := noVotes(in, voters)
		res.Options = results
		if voters > 0 {
			res.Summary = "No option received any stars.\n\n" + participation(voters)
		}
		return res
	}

	if scored < 2 {
		winner := results[0]
		fmt.Fprintf(&sb, "\nOnly %s received stars; no runoff needed.\n\n%s", winner.Text, participation(voters))
		return models.TallyResult{
			Winner:   winner.Text,
			WinnerID: winner.OptionID,
			Voters:   voters,
			Options:  results,
			Summary:  sb.String(),
		}
	}

	f1, f2 := results[0], results[1]
	prefer1, prefer2, noPreference := 0, 0, 0
	for _, voter := range in.voters {
		r1, r2 := in.rating(voter, f1.OptionID), in.rating(voter, f2.OptionID)
		switch {
		case r1 > r2:
			prefer1++
		case r2 > r1:
			prefer2++
		default:
			noPreference++
		}
	}

	// The higher-scoring finalist keeps an even runoff
	winner, loser := f1, f2
	winnerVotes, loserVotes := prefer1, prefer2
	if prefer2 > prefer1 {
		winner, loser = f2, f1
		winnerVotes, loserVotes = prefer2, prefer1
	}
	results = promote(results, winner.OptionID)

	runoff := models.Round{
		Number: 1,
		Counts: []models.RoundCount{
			{OptionID: winner.OptionID, Text: winner.Text, Count: winnerVotes},
			{OptionID: loser.OptionID, Text: loser.Text, Count: loserVotes},
		},
		NoPreference: noPreference,
	}

	sb.WriteString("\n**Runoff Round:**\n")
	fmt.Fprintf(&sb, "%s: %s\n", boldIf(f1, winner), votes(prefer1))
	fmt.Fprintf(&sb, "%s: %s\n", boldIf(f2, winner), votes(prefer2))
	fmt.Fprintf(&sb, "No preference: %s\n", english.Plural(noPreference, "voter", ""))
	if prefer1 == prefer2 {
		fmt.Fprintf(&sb, "Runoff tied; %s wins as the higher-scoring finalist.\n", f1.Text)
	}
	sb.WriteString("\n")
	sb.WriteString(participation(voters))

	return models.TallyResult{
		Winner:   winner.Text,
		WinnerID: winner.OptionID,
		Voters:   voters,
		Options:  results,
		Rounds:   []models.Round{runoff},
		Summary:  sb.String(),
	}
}

func boldIf(r, winner models.OptionResult) string {
	if r.OptionID == winner.OptionID {
		return "**" + r.Text + "**"
	}
	return r.Text
}
