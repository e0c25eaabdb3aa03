// Package forest loads a regression forest exported as JSON and exposes each
// tree as a committee member.
//
// Artifact layout:
//
//	{
//	  "columns": ["Year", "Kilometer", ...],
//	  "output_scale": 1200,
//	  "trees": [{"nodes": [{"feature": 0, "threshold": 2015.5, "left": 1, "right": 2}, {"value": 4.2}, ...]}]
//	}
//
// Node 0 is the root. A node whose left and right indices are both zero or
// negative is a leaf. Otherwise the walk goes left when x[feature] <=
// threshold. Child indices always point forward, so every walk terminates.
// Leaf values are in the training unit and are multiplied by output_scale to
// produce USD.
package forest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/kilianp07/carprice/auth"
	"github.com/kilianp07/carprice/core/factory"
	"github.com/kilianp07/carprice/core/features"
	"github.com/kilianp07/carprice/core/prediction"
)

// ErrInvalidArtifact is returned for structurally broken artifacts.
var ErrInvalidArtifact = errors.New("invalid forest artifact")

// Node is one split or leaf of a tree.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

func (n Node) leaf() bool { return n.Left <= 0 && n.Right <= 0 }

// Tree is a flat array of nodes rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Artifact is the serialized forest.
type Artifact struct {
	Columns     []string `json:"columns"`
	OutputScale float64  `json:"output_scale"`
	Trees       []Tree   `json:"trees"`
}

// Forest is a loaded artifact. It implements prediction.Ensemble.
type Forest struct {
	schema  features.Schema
	members []prediction.Estimator
}

// Load reads and validates the artifact at path.
func Load(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forest artifact: %w", err)
	}
	return decode(data)
}

// maxArtifactBytes bounds remote downloads.
const maxArtifactBytes = 256 << 20

// Fetch downloads and validates the artifact served at url.
func Fetch(ctx context.Context, url string, client *http.Client) (*Forest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forest artifact: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch forest artifact: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch forest artifact: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (*Forest, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	return New(a)
}

// New validates a and builds the forest.
func New(a Artifact) (*Forest, error) {
	schema, err := features.NewSchema(a.Columns)
	if err != nil {
		return nil, err
	}
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("%w: no trees", ErrInvalidArtifact)
	}
	scale := a.OutputScale
	switch {
	case scale == 0:
		scale = 1
	case scale < 0:
		return nil, fmt.Errorf("%w: negative output_scale %v", ErrInvalidArtifact, scale)
	}
	members := make([]prediction.Estimator, len(a.Trees))
	for i, t := range a.Trees {
		if err := t.validate(schema.Len()); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidArtifact, i, err)
		}
		members[i] = treeEstimator{nodes: t.Nodes, scale: scale}
	}
	return &Forest{schema: schema, members: members}, nil
}

func (t Tree) validate(width int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.leaf() {
			continue
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: children %d/%d out of range", i, n.Left, n.Right)
		}
		if n.Feature < 0 || n.Feature >= width {
			return fmt.Errorf("node %d: feature %d outside schema of %d columns", i, n.Feature, width)
		}
	}
	return nil
}

// Schema returns the column order the trees were trained on.
func (f *Forest) Schema() features.Schema { return f.schema }

// Estimators returns one estimator per tree.
func (f *Forest) Estimators() []prediction.Estimator { return f.members }

type treeEstimator struct {
	nodes []Node
	scale float64
}

func (t treeEstimator) Predict(ctx context.Context, x features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	i := 0
	for {
		n := t.nodes[i]
		if n.leaf() {
			return n.Value * t.scale, nil
		}
		if n.Feature >= x.Len() {
			return 0, fmt.Errorf("%w: feature %d missing from vector", features.ErrInvalidSchema, n.Feature)
		}
		if x.At(n.Feature) <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func init() {
	_ = prediction.RegisterEnsemble("forest", func(conf map[string]any) (prediction.Ensemble, error) {
		var c struct {
			Path string    `json:"path"`
			URL  string    `json:"url"`
			Auth auth.Conf `json:"auth"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		switch {
		case c.Path != "" && c.URL != "":
			return nil, fmt.Errorf("%w: set either model.conf.path or model.conf.url", ErrInvalidArtifact)
		case c.URL != "":
			ctx, cancel := context.WithTimeout(context.Background(), auth.DefaultTimeout)
			defer cancel()
			return Fetch(ctx, c.URL, auth.NewHTTPClient(ctx, c.Auth))
		case c.Path != "":
			return Load(c.Path)
		default:
			return nil, fmt.Errorf("%w: model.conf.path or model.conf.url is required", ErrInvalidArtifact)
		}
	})
}
