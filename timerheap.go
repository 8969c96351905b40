package evloop

import "time"

// timerItem is one scheduled timer watcher, ordered by deadline in a
// container/heap min-heap (the teacher's loop.go does the same for its
// single timer facility; here the heap lives inside each Engine instead,
// since timers are dispatched as part of RunOnce).
type timerItem struct {
	deadline time.Time
	interval time.Duration
	mode     Mode
	cb       func()
	id       watcherID
	index    int
}

type timerHeap []*timerItem

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	item := x.(*timerItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}
