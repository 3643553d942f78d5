package grow

import (
	"fmt"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type candidateScorer interface {
	candidateScore(split int) (score, leftSum, rightSum float64)
}

// Describe renders the candidates of a leaf with their side weights and
// score, the best split marked with '*'.
func Describe(stats LeafStats) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("LEAF depth=%d weight=%v finished=%v", stats.Depth(), stats.WeightSum(), stats.IsFinished()))
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Split", AlignHeader: text.AlignCenter, WidthMax: 40},
		{Name: "Left", Align: text.AlignRight},
		{Name: "Right", Align: text.AlignRight},
		{Name: "Score", Align: text.AlignRight},
	})
	t.AppendHeader(table.Row{"#", "Split", "Left", "Right", "Score", ""})

	scorer, ok := stats.(candidateScorer)
	bestIndex := -1
	bestScore := math.MaxFloat64
	rows := make([]table.Row, 0, stats.NumSplits())
	for i := 0; i < stats.NumSplits(); i++ {
		row := table.Row{i, stats.Split(i).String()}
		if ok {
			score, left, right := scorer.candidateScore(i)
			row = append(row, left, right, fmt.Sprintf("%.4f", score))
			if left > 0 && right > 0 && score < bestScore {
				bestIndex, bestScore = i, score
			}
		}
		rows = append(rows, row)
	}
	for i, row := range rows {
		if i == bestIndex {
			row = append(row, "*")
		}
		t.AppendRow(row)
	}
	return t.Render()
}
