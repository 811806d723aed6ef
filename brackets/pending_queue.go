package brackets

// PendingQueue holds upper bracket losers (and a lone lower bracket survivor)
// until the lower bracket can give them an opponent. It edits the queue slice
// of the bracket state in place.
type PendingQueue struct {
	ids *[]string
}

func newPendingQueue(ids *[]string) *PendingQueue {
	if *ids == nil {
		*ids = []string{}
	}
	return &PendingQueue{ids: ids}
}

func (q *PendingQueue) Len() int {
	return len(*q.ids)
}

func (q *PendingQueue) Contains(id string) bool {
	for _, queued := range *q.ids {
		if queued == id {
			return true
		}
	}
	return false
}

// Push appends id unless it is already queued. It reports whether the queue
// changed.
func (q *PendingQueue) Push(id string) bool {
	if q.Contains(id) {
		return false
	}
	*q.ids = append(*q.ids, id)
	return true
}

func (q *PendingQueue) Remove(id string) bool {
	for i, queued := range *q.ids {
		if queued == id {
			*q.ids = append((*q.ids)[:i], (*q.ids)[i+1:]...)
			return true
		}
	}
	return false
}

// Drain empties the queue and returns its former contents in queue order.
func (q *PendingQueue) Drain() []string {
	drained := append([]string{}, *q.ids...)
	*q.ids = []string{}
	return drained
}

func (q *PendingQueue) IDs() []string {
	return append([]string{}, *q.ids...)
}
