package engine

// frontierItem is one entry in the open-set heap. seq is a monotonically
// increasing insertion counter: it breaks ties between equal f-scores so
// that first-inserted cells are explored first.
type frontierItem struct {
	cell   Position
	gScore int
	fScore int
	seq    int
	index  int
}

// frontier is a binary heap of cells ordered by (fScore, seq).
type frontier []*frontierItem

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].fScore != f[j].fScore {
		return f[i].fScore < f[j].fScore
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) {
	f[i], f[j] = f[j], f[i]
	f[i].index = i
	f[j].index = j
}

func (f *frontier) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(*f)
	*f = append(*f, item)
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*f = old[:n-1]
	return item
}
