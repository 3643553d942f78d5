package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Roche85/tensorforest/decision_tree/ml/grow"
	"github.com/Roche85/tensorforest/decision_tree/ml/tree"
	"github.com/Roche85/tensorforest/decision_tree/model"
	"github.com/Roche85/tensorforest/decision_tree/param/conf_forest"
	"github.com/Roche85/tensorforest/rock-share/base/logger"
	"github.com/Roche85/tensorforest/utils"
	"github.com/gin-gonic/gin"
)

// leafService exposes one FertileStats registry over http.
type leafService struct {
	params   *conf_forest.Params
	registry *grow.FertileStats
}

func newRouter(params *conf_forest.Params, opts ...grow.Option) *gin.Engine {
	s := &leafService{params: params, registry: grow.NewFertileStats(params, opts...)}
	r := gin.New()
	r.Use(gin.Recovery())

	leaves := r.Group("/leaves/:id")
	leaves.POST("", s.open)
	leaves.DELETE("", s.close)
	leaves.POST("/examples", s.addExamples)
	leaves.POST("/csv", s.addCsv)
	leaves.GET("/best", s.best)
	leaves.GET("/describe", s.describe)
	leaves.GET("/graph", s.graph)
	leaves.GET("/checkpoint", s.checkpoint)
	leaves.PUT("/checkpoint", s.restore)
	return r
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, utils.ErrLeafNotFound):
		status = http.StatusNotFound
	case errors.Is(err, utils.ErrLeafExists):
		status = http.StatusConflict
	case errors.Is(err, utils.ErrParameter), errors.Is(err, utils.ErrReadCsv), errors.Is(err, utils.ErrWrongDataType):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Errorf("request %s failed: %v", c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func badRequest(c *gin.Context, err error) {
	fail(c, fmt.Errorf("%w: %v", utils.ErrParameter, err))
}

func (s *leafService) open(c *gin.Context) {
	var req OpenLeafRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	splits := make([]*model.BinaryNode, 0, len(req.Splits))
	for _, split := range req.Splits {
		node, err := split.toNode()
		if err != nil {
			badRequest(c, err)
			return
		}
		splits = append(splits, node)
	}
	if err := s.registry.Open(c.Param("id"), req.Depth, splits); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "splits": len(splits)})
}

func (s *leafService) close(c *gin.Context) {
	s.registry.Close(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *leafService) addExamples(c *gin.Context) {
	var req ExamplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if s.params.IsRegression() {
		for i, e := range req.Examples {
			if len(e.Targets) < int(s.params.NumOutputs) {
				badRequest(c, fmt.Errorf("example %d has %d targets, want %d", i, len(e.Targets), s.params.NumOutputs))
				return
			}
		}
	}
	s.feed(c, newBatch(req.Examples, s.params.IsRegression()))
}

// addCsv reads a multipart "file" field. The "target" form field lists the
// target columns separated by commas, "weight" names an optional weight column.
func (s *leafService) addCsv(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	targets := strings.Split(c.DefaultPostForm("target", "label"), ",")
	if !s.params.IsRegression() && len(targets) != 1 {
		badRequest(c, fmt.Errorf("classification needs exactly one target column, got %d", len(targets)))
		return
	}
	if s.params.IsRegression() && len(targets) < int(s.params.NumOutputs) {
		badRequest(c, fmt.Errorf("got %d target columns, want %d", len(targets), s.params.NumOutputs))
		return
	}
	f, err := header.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	table, err := utils.ReadExampleCsv(f, targets, c.PostForm("weight"))
	if err != nil {
		fail(c, err)
		return
	}
	s.feed(c, newBatchFromTable(table, s.params.IsRegression()))
}

func (s *leafService) feed(c *gin.Context, b *batch) {
	leafID := c.Param("id")
	finished := false
	for i := 0; i < b.size; i++ {
		var err error
		if finished, err = s.registry.AddExample(leafID, b.data, b.target, i); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "added": b.size, "finished": finished})
}

func (s *leafService) best(c *gin.Context) {
	leafID := c.Param("id")
	best, ok, err := s.registry.BestSplit(leafID)
	if err != nil {
		fail(c, err)
		return
	}
	finished, err := s.registry.Finished(leafID)
	if err != nil {
		fail(c, err)
		return
	}
	resp := gin.H{"success": true, "found": ok, "finished": finished}
	if ok {
		resp["split"] = best.Split.String()
		resp["left"] = best.LeftStats
		resp["right"] = best.RightStats
	}
	c.JSON(http.StatusOK, resp)
}

func (s *leafService) describe(c *gin.Context) {
	out, err := s.registry.Describe(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.String(http.StatusOK, out)
}

func (s *leafService) graph(c *gin.Context) {
	leafID := c.Param("id")
	best, ok, err := s.registry.BestSplit(leafID)
	if err != nil {
		fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "found": false})
		return
	}
	dot, err := tree.SplitGraph(leafID, best)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/vnd.graphviz", []byte(dot))
}

func (s *leafService) checkpoint(c *gin.Context) {
	cp, err := s.registry.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, CheckpointResponse{Depth: cp.Depth, Slot: cp.Slot})
}

func (s *leafService) restore(c *gin.Context) {
	var req CheckpointResponse
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := s.registry.Restore(c.Request.Context(), map[string]grow.LeafCheckpoint{
		c.Param("id"): {Depth: req.Depth, Slot: req.Slot},
	})
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
