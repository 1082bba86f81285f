package boxopt

import "context"

// workQueue carries the ids of objectives no worker currently holds.
// Possession of an id outside the queue grants exclusive write access to
// that objective's assignment slot. The capacity equals the number of
// objectives and an id is queued at most once, so push never blocks.
type workQueue chan int

func newWorkQueue(n int) workQueue {
	return make(workQueue, n)
}

func (q workQueue) push(id int) {
	q <- id
}

// tryPop returns false immediately if the queue is empty.
func (q workQueue) tryPop() (int, bool) {
	select {
	case id := <-q:
		return id, true
	default:
		return 0, false
	}
}

// pop waits for an id until done is closed or ctx ends.
func (q workQueue) pop(ctx context.Context, done <-chan struct{}) (int, bool) {
	select {
	case id := <-q:
		return id, true
	case <-done:
		return 0, false
	case <-ctx.Done():
		return 0, false
	}
}
