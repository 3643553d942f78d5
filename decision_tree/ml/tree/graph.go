package tree

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/rock-share/base/logger"
	"github.com/awalterschulze/gographviz"
)

// SplitGraph renders a chosen split as a three node dot graph: the leaf
// being split and its two would-be children with their statistics.
func SplitGraph(leafName string, best *model.SplitCandidate) (string, error) {
	graphAst, err := gographviz.Parse([]byte(`digraph G{}`))
	if err != nil {
		return "", err
	}
	graph := gographviz.NewGraph()
	if err := gographviz.Analyse(graphAst, graph); err != nil {
		return "", err
	}

	parent := quote(leafName)
	if err := graph.AddNode("G", parent, map[string]string{
		"label": fmt.Sprintf("<%s<br/>%s>", escape(leafName), escape(best.Split.String())),
	}); err != nil {
		return "", err
	}
	for _, side := range []struct {
		name  string
		stats *model.LeafStat
	}{{"left", best.LeftStats}, {"right", best.RightStats}} {
		child := quote(leafName + "_" + side.name)
		if err := graph.AddNode("G", child, map[string]string{"label": statsLabel(side.name, side.stats)}); err != nil {
			return "", err
		}
		if err := graph.AddEdge(parent, child, true, nil); err != nil {
			return "", err
		}
	}
	return graph.String(), nil
}

// WriteSplitGraph writes SplitGraph to outPath.
func WriteSplitGraph(outPath, leafName string, best *model.SplitCandidate) error {
	dot, err := SplitGraph(leafName, best)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(dot), 0o644); err != nil {
		logger.Errorf("error when write to file:%s--%v", outPath, err)
		return err
	}
	return nil
}

func statsLabel(side string, stats *model.LeafStat) string {
	if stats == nil {
		return fmt.Sprintf("<%s<br/>empty>", side)
	}
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("<%s<br/>samples = %v", side, stats.WeightSum))
	switch {
	case stats.Classification != nil && stats.Classification.DenseCounts != nil:
		counts := stats.Classification.DenseCounts
		impurity := 0.0
		if stats.WeightSum > 0 {
			impurity = WeightedGiniOfCounts(counts) / stats.WeightSum
		}
		builder.WriteString(fmt.Sprintf("<br/>gini = %.4f<br/>value = %v", impurity, counts))
	case stats.Classification != nil:
		impurity, _ := Gini(stats.Classification.SparseCounts)
		builder.WriteString(fmt.Sprintf("<br/>gini = %.4f<br/>value = %s", impurity, sparseString(stats.Classification.SparseCounts)))
	case stats.Regression != nil:
		builder.WriteString(fmt.Sprintf("<br/>sum = %v", stats.Regression.MeanOutput))
	}
	builder.WriteString(">")
	return builder.String()
}

func sparseString(counts map[int32]float64) string {
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, int(k))
	}
	sort.Ints(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d:%v", k, counts[int32(k)]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
