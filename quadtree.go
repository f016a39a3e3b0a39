package drift

// Quadtree defaults.
const (
	quadCapacity = 8
	quadMaxDepth = 10
)

// Quadtree is a region quadtree over circle slice indices. Each circle is
// stored once, in the deepest node whose rectangle contains its bounding box,
// so circles straddling a split stay on the internal node above it. Trees are
// built per tick and never updated incrementally.
type Quadtree struct {
	circles []Circle
	root    quadNode
}

type quadNode struct {
	bounds   Rect
	items    []int
	children *[4]quadNode
	depth    int
}

// BuildQuadtree indexes every circle whose disk touches bounds. The tree
// keeps a reference to circles for the duration of the tick.
func BuildQuadtree(circles []Circle, bounds Rect) *Quadtree {
	t := &Quadtree{
		circles: circles,
		root:    quadNode{bounds: bounds},
	}
	for i := range circles {
		if t.root.intersects(&circles[i]) {
			t.root.insert(circles, i)
		}
	}
	return t
}

// diskBounds returns the bounding box of c.
func diskBounds(c *Circle) Rect {
	return Rect{X: c.X - c.R, Y: c.Y - c.R, Width: 2 * c.R, Height: 2 * c.R}
}

func (n *quadNode) intersects(c *Circle) bool {
	return n.bounds.Intersects(diskBounds(c)) && n.bounds.IntersectsDisk(c.X, c.Y, c.R)
}

func (n *quadNode) insert(circles []Circle, i int) {
	if n.children == nil {
		if len(n.items) < quadCapacity || n.depth >= quadMaxDepth {
			n.items = append(n.items, i)
			return
		}
		n.subdivide(circles)
	}
	if k := n.childFor(&circles[i]); k >= 0 {
		n.children[k].insert(circles, i)
		return
	}
	n.items = append(n.items, i)
}

// childFor returns the child whose rectangle contains c's bounding box, or -1
// when c straddles a split.
func (n *quadNode) childFor(c *Circle) int {
	b := diskBounds(c)
	for k := range n.children {
		r := n.children[k].bounds
		if r.Contains(b.X, b.Y) && r.Contains(b.X+b.Width, b.Y+b.Height) {
			return k
		}
	}
	return -1
}

// subdivide splits the node into four equal quadrants and pushes down every
// item that fits in one of them.
func (n *quadNode) subdivide(circles []Circle) {
	hw := n.bounds.Width / 2
	hh := n.bounds.Height / 2
	x, y := n.bounds.X, n.bounds.Y
	d := n.depth + 1
	n.children = &[4]quadNode{
		{bounds: Rect{x + hw, y, hw, hh}, depth: d},
		{bounds: Rect{x, y, hw, hh}, depth: d},
		{bounds: Rect{x + hw, y + hh, hw, hh}, depth: d},
		{bounds: Rect{x, y + hh, hw, hh}, depth: d},
	}
	items := n.items
	n.items = nil
	for _, i := range items {
		if k := n.childFor(&circles[i]); k >= 0 {
			n.children[k].insert(circles, i)
		} else {
			n.items = append(n.items, i)
		}
	}
}

// Query appends to dst the index of every circle stored in a node that circle
// i touches, excluding i itself. Each index appears at most once. The result
// may contain false positives but never misses a circle overlapping i inside
// the tree bounds.
func (t *Quadtree) Query(i int, dst []int) []int {
	return t.root.query(&t.circles[i], i, dst)
}

func (n *quadNode) query(c *Circle, self int, dst []int) []int {
	if !n.intersects(c) {
		return dst
	}
	for _, j := range n.items {
		if j != self {
			dst = append(dst, j)
		}
	}
	if n.children != nil {
		for k := range n.children {
			dst = n.children[k].query(c, self, dst)
		}
	}
	return dst
}

// Len returns the number of indexed circles.
func (t *Quadtree) Len() int {
	return t.root.count()
}

func (n *quadNode) count() int {
	total := len(n.items)
	if n.children != nil {
		for k := range n.children {
			total += n.children[k].count()
		}
	}
	return total
}

// pairKey returns a canonical key for the unordered pair (i, j).
func pairKey(i, j int) uint64 {
	if i > j {
		i, j = j, i
	}
	return uint64(uint32(i))<<32 | uint64(uint32(j))
}
