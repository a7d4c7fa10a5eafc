package job

import "github.com/roach88/jobtree/internal/assoc"

// occurrence counts how often a job identity appears across join inputs.
type occurrence struct {
	job   *Job
	count int
	pass  int // last input that counted this identity
}

// keepFunc decides from an occurrence count whether a job is in the output.
type keepFunc func(count int) bool

// JoinAnd returns the jobs present in both a and b.
func JoinAnd(a, b *Results) *Results {
	return join(a, b, 1, func(n int) bool { return n >= 2 })
}

// JoinOr returns the jobs present in a, b or both, without duplicates.
func JoinOr(a, b *Results) *Results {
	return join(a, b, 1, func(n int) bool { return n >= 1 })
}

// JoinSub returns the jobs present in a and absent from b.
func JoinSub(a, b *Results) *Results {
	return join(a, b, -1, func(n int) bool { return n == 1 })
}

// JoinXor returns the jobs present in exactly one of a and b.
func JoinXor(a, b *Results) *Results {
	return join(a, b, 1, func(n int) bool { return n == 1 })
}

// join counts identities in a scratch store keyed by job ID, adding one per
// list for a and rightSign per list for b, then emits the survivors in a
// single in-order walk. Each input counts an identity at most once, so
// duplicates inside one list do not masquerade as overlap. Output order
// follows the store's hash order, not input order.
func join(a, b *Results, rightSign int, keep keepFunc) *Results {
	counts := assoc.NewUint64[ID, *occurrence]()

	tally := func(rs *Results, pass, delta int) {
		rs.Each(func(j *Job) bool {
			o := *counts.Add(j.id, &occurrence{job: j})
			if o.pass != pass {
				o.pass = pass
				o.count += delta
			}
			return true
		})
	}
	tally(a, 1, 1)
	tally(b, 2, rightSign)

	out := &Results{}
	counts.Each(func(_ ID, o *occurrence) bool {
		if keep(o.count) {
			out.Append(o.job)
		}
		return true
	})
	return out
}
