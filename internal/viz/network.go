package viz

import (
	"fmt"
	"math"

	"github.com/atip/dashboard/internal/display"
)

// Co-author network dimensions.
const (
	NetworkSize   = 240.0
	NetworkRadius = 80.0
	NodeRadius    = 20.0
	CenterRadius  = 24.0
	EdgeOpacity   = 0.6
)

// Node is a co-author placed on the network.
type Node struct {
	display.Coauthor
	// Key identifies the node for hover: the co-author id, else the name.
	Key         string
	At          Point
	StrokeWidth float64
	Hovered     bool
}

// Network is the geometry of a radial co-author layout.
type Network struct {
	Size          float64
	Center        Point
	CenterLabel   string
	Nodes         []Node
	EdgeOpacity   float64
	SubjectRadius float64
	NodeRadius    float64
}

// NewNetwork places the subject in the center and the co-authors evenly on a
// circle of NetworkRadius. Edge stroke width equals collaboration strength.
func NewNetwork(subjectInitials string, coauthors []display.Coauthor) Network {
	c := NetworkSize / 2
	n := Network{
		Size:          NetworkSize,
		Center:        Point{X: c, Y: c},
		CenterLabel:   subjectInitials,
		EdgeOpacity:   EdgeOpacity,
		SubjectRadius: CenterRadius,
		NodeRadius:    NodeRadius,
	}
	for i, co := range coauthors {
		angle := float64(i) * 2 * math.Pi / float64(len(coauthors))
		key := co.ID
		if key == "" {
			key = co.Name
		}
		n.Nodes = append(n.Nodes, Node{
			Coauthor:    co,
			Key:         key,
			At:          polar(n.Center, NetworkRadius, angle),
			StrokeWidth: co.Strength,
		})
	}
	return n
}

// WithHover returns a copy of the network with h applied. At most one node is
// marked hovered.
func (n Network) WithHover(h HoverState) Network {
	nodes := make([]Node, len(n.Nodes))
	for i, node := range n.Nodes {
		node.Hovered = h.Is(node.Key)
		nodes[i] = node
	}
	n.Nodes = nodes
	return n
}

// Hovered returns the hovered node, if any.
func (n Network) Hovered() (Node, bool) {
	for _, node := range n.Nodes {
		if node.Hovered {
			return node, true
		}
	}
	return Node{}, false
}

// HoverState is the exclusive hover highlight: a single nullable slot.
type HoverState struct {
	key string
}

// Enter highlights key, replacing any other highlighted node.
func (h HoverState) Enter(key string) HoverState {
	return HoverState{key: key}
}

// Leave clears the highlight.
func (h HoverState) Leave() HoverState {
	return HoverState{}
}

// Is reports whether key is highlighted.
func (h HoverState) Is(key string) bool {
	return h.key != "" && h.key == key
}

// Key returns the highlighted key, or "" when nothing is highlighted.
func (h HoverState) Key() string {
	return h.key
}

// Tooltip is the transient label of the hovered co-author.
type Tooltip struct {
	Name string
	Text string
}

// Tooltip returns the tooltip of the hovered node, or nil when nothing is
// hovered.
func (n Network) Tooltip() *Tooltip {
	node, ok := n.Hovered()
	if !ok {
		return nil
	}
	return &Tooltip{Name: node.Name, Text: PapersTogether(node.SharedPapers)}
}

// PapersTogether formats a shared-paper count.
func PapersTogether(n int) string {
	if n == 1 {
		return "1 paper together"
	}
	return fmt.Sprintf("%d papers together", n)
}
