// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/quickly-vote/models"
)

// NoVotesLabel is the winner label used when nothing was cast
const NoVotesLabel = "No votes were cast"

// Compute tallies the ballots of a poll with the poll's voting method.
// The result depends only on the set of ballots, never on their order.
func Compute(poll models.Poll, ballots []models.BallotEntry) models.TallyResult {
	in := newInput(poll, ballots)

	var res models.TallyResult
	switch poll.Method {
	case models.MethodPlurality:
		res = plurality(in)
	case models.MethodApproval:
		res = approval(in)
	case models.MethodStar:
		res = star(in)
	case models.MethodRanked:
		res = instantRunoff(in, len(in.optionIDs)+5)
	default:
		res = noVotes(in, 0)
		res.Summary = fmt.Sprintf("Unsupported voting method %q.", poll.Method)
	}

	if models.ValidMethod(poll.Method) {
		res.Summary = fmt.Sprintf("**%s Voting Results**\n\n%s", models.MethodName(poll.Method), res.Summary)
	}
	res.PollID = poll.ID
	res.Method = poll.Method
	return res
}

// input is the sorted, deduplicated view of a poll's ballots
type input struct {
	poll      models.Poll
	optionIDs []string // ascending
	text      map[string]string
	voters    []string                  // ascending, voters with at least one entry
	ratings   map[string]map[string]int // voter -> option -> rating
}

func newInput(poll models.Poll, ballots []models.BallotEntry) *input {
	in := &input{
		poll:    poll,
		text:    make(map[string]string, len(poll.Options)),
		ratings: make(map[string]map[string]int),
	}
	for _, opt := range poll.Options {
		if _, dup := in.text[opt.ID]; dup {
			continue
		}
		in.text[opt.ID] = opt.Text
		in.optionIDs = append(in.optionIDs, opt.ID)
	}
	sort.Strings(in.optionIDs)

	sorted := make([]models.BallotEntry, 0, len(ballots))
	for _, b := range ballots {
		if _, ok := in.text[b.OptionID]; !ok {
			continue
		}
		sorted = append(sorted, b)
	}
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.VoterID != b.VoterID {
			return a.VoterID < b.VoterID
		}
		if a.OptionID != b.OptionID {
			return a.OptionID < b.OptionID
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
		return a.Rating < b.Rating
	})

	// Later timestamps overwrite earlier ones for a repeated triple
	for _, b := range sorted {
		byOption, ok := in.ratings[b.VoterID]
		if !ok {
			byOption = make(map[string]int)
			in.ratings[b.VoterID] = byOption
			in.voters = append(in.voters, b.VoterID)
		}
		byOption[b.OptionID] = b.Rating
	}

	return in
}

func (in *input) rating(voterID, optionID string) int {
	return in.ratings[voterID][optionID]
}

// rankByScore orders options by score descending, then option ID ascending,
// and assigns 1-indexed ranks
func rankByScore(in *input, scores map[string]float64, total float64) []models.OptionResult {
	results := make([]models.OptionResult, 0, len(in.optionIDs))
	for _, id := range in.optionIDs {
		results = append(results, models.OptionResult{
			OptionID:   id,
			Text:       in.text[id],
			Score:      scores[id],
			Percentage: percent(scores[id], total),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.OptionID < b.OptionID
	})

	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// promote moves the option with the given ID to the front and re-ranks
func promote(results []models.OptionResult, optionID string) []models.OptionResult {
	for i, r := range results {
		if r.OptionID != optionID {
			continue
		}
		copy(results[1:i+1], results[:i])
		results[0] = r
		break
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}

// tiedAtTop returns the IDs sharing the top score, in rank order
func tiedAtTop(results []models.OptionResult) []string {
	if len(results) == 0 {
		return nil
	}
	var ids []string
	for _, r := range results {
		if r.Score != results[0].Score {
			break
		}
		ids = append(ids, r.OptionID)
	}
	return ids
}

func noVotes(in *input, voters int) models.TallyResult {
	return models.TallyResult{
		Winner:  NoVotesLabel,
		Voters:  voters,
		Options: rankByScore(in, nil, 0),
		Summary: "No votes were cast in this poll.",
	}
}

// percent returns part/whole*100, or 0 when whole is zero
func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part * 100 / whole
}

func labels(in *input, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = in.text[id]
	}
	return out
}

func votes(n int) string {
	return english.Plural(n, "vote", "")
}

func participation(n int) string {
	return fmt.Sprintf("%s %s participated.", humanize.Comma(int64(n)), english.PluralWord(n, "voter", ""))
}

// writeCountLine writes one option line, bolding the winner
func writeCountLine(sb *strings.Builder, text string, count int, pct float64, winner bool) {
	if winner {
		text = "**" + text + "**"
	}
	fmt.Fprintf(sb, "%s: %s (%.1f%%)\n", text, votes(count), pct)
}
