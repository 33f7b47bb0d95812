package transaction

import "container/heap"

// Outbound is a message awaiting transmission, ordered by (priority,
// enqueue-sequence) per spec §4.4.
type Outbound struct {
	Priority Priority
	Seq      uint64
	Frame    []byte
	// ExpectedPeer/ExpectedAction/CorrelatingID declare the response
	// descriptor the matcher will use to complete this transaction.
	ExpectedPeer     byte
	ExpectedAction   byte
	CorrelatingID    int
	TimeoutMs        int
	MaxRetries       int
	RetryBackoffMs   []int
	OnResult         func(*MatchResult)
	attempt          int
	index            int
}

type outboundHeap []*Outbound

func (h outboundHeap) Len() int { return len(h) }

func (h outboundHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].Seq < h[j].Seq
}

func (h outboundHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *outboundHeap) Push(x interface{}) {
	o := x.(*Outbound)
	o.index = len(*h)
	*h = append(*h, o)
}

func (h *outboundHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// Queue is a priority-ordered outbound message queue, one per Port.
type Queue struct {
	h       outboundHeap
	nextSeq uint64
}

func NewQueue() *Queue {
	q := &Queue{}
	heap.Init(&q.h)
	return q
}

// Enqueue adds a message, stamping it with the next monotonic sequence
// number so same-priority messages remain FIFO.
func (q *Queue) Enqueue(o *Outbound) {
	o.Seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.h, o)
}

// Dequeue removes and returns the highest-priority, oldest message, or nil
// if the queue is empty.
func (q *Queue) Dequeue() *Outbound {
	if q.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.h).(*Outbound)
}

func (q *Queue) Len() int { return q.h.Len() }
