package round

import "time"

type timerKind int

const (
	timerRoundStart timerKind = iota
	timerCountdown
	timerResultAdvance
)

func (k timerKind) String() string {
	switch k {
	case timerRoundStart:
		return "round_start"
	case timerCountdown:
		return "countdown"
	case timerResultAdvance:
		return "result_advance"
	}
	return "unknown"
}

// timer é um prazo em tempo de relógio processado como mensagem pelo Scheduler
// gen invalida countdown/result antigos; round_start nunca é invalidado
type timer struct {
	at    time.Time
	kind  timerKind
	round int
	gen   uint64
	seq   uint64
}

// timerQueue mantém os prazos ordenados por (at, seq)
// seq garante ordem FIFO para prazos no mesmo instante
type timerQueue struct {
	items []timer
	seq   uint64
}

func (q *timerQueue) push(t timer) {
	q.seq++
	t.seq = q.seq
	i := len(q.items)
	for i > 0 && t.at.Before(q.items[i-1].at) {
		i--
	}
	q.items = append(q.items, timer{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = t
}

// popDue remove e retorna o primeiro prazo vencido até now
func (q *timerQueue) popDue(now time.Time) (timer, bool) {
	if len(q.items) == 0 || q.items[0].at.After(now) {
		return timer{}, false
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t, true
}

func (q *timerQueue) next() (time.Time, bool) {
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].at, true
}

// nextOf retorna o próximo prazo de um tipo
func (q *timerQueue) nextOf(kind timerKind) (timer, bool) {
	for _, t := range q.items {
		if t.kind == kind {
			return t, true
		}
	}
	return timer{}, false
}

func (q *timerQueue) pending(kind timerKind) int {
	n := 0
	for _, t := range q.items {
		if t.kind == kind {
			n++
		}
	}
	return n
}

// drop remove prazos de um tipo com geração antiga
func (q *timerQueue) drop(kind timerKind, before uint64) {
	kept := q.items[:0]
	for _, t := range q.items {
		if t.kind == kind && t.gen < before {
			continue
		}
		kept = append(kept, t)
	}
	q.items = kept
}
