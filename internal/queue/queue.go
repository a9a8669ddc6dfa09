package queue

import "github.com/temoto/qcounter/internal/types"

// Upper bound for configured capacity, size of the backing array.
const MaxCapacity = 64

// Queue is a bounded FIFO of tokens on a fixed array, it never allocates.
type Queue struct {
	buf      [MaxCapacity]types.Token
	head     uint8
	length   uint8
	capacity uint8
}

func (q *Queue) Len() int { return int(q.length) }
func (q *Queue) Cap() int { return int(q.capacity) }
func (q *Queue) Full() bool { return q.length >= q.capacity }
func (q *Queue) Empty() bool { return q.length == 0 }
func (q *Queue) setCap(n uint8) { q.capacity = n }

// Head returns oldest token or TokenNone.
func (q *Queue) Head() types.Token {
	if q.length == 0 {
		return types.TokenNone
	}
	return q.buf[q.head]
}

func (q *Queue) push(t types.Token) bool {
	if q.Full() {
		return false
	}
	q.buf[(int(q.head)+int(q.length))%MaxCapacity] = t
	q.length++
	return true
}

func (q *Queue) pop() (types.Token, bool) {
	if q.length == 0 {
		return types.TokenNone, false
	}
	t := q.buf[q.head]
	q.buf[q.head] = types.TokenNone
	q.head = uint8((int(q.head) + 1) % MaxCapacity)
	q.length--
	return t, true
}

func (q *Queue) clear() {
	*q = Queue{capacity: q.capacity}
}

// AppendTo appends waiting tokens in FIFO order and returns the extended slice.
func (q *Queue) AppendTo(dst []types.Token) []types.Token {
	for i := 0; i < int(q.length); i++ {
		dst = append(dst, q.buf[(int(q.head)+i)%MaxCapacity])
	}
	return dst
}
