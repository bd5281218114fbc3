package interval

import "errors"

// ErrInconsistentIntervals signals that a degenerate or inverted interval
// reached the subtraction engine. It marks a broken upstream invariant, not a
// recoverable caller error: the computation is abandoned with no partial
// result.
var ErrInconsistentIntervals = errors.New("interval: inconsistent interval pair")

// SubtractOne removes sub from source and returns the 0, 1, or 2 remaining
// pieces. The six configurations below are mutually exclusive and exhaustive
// for well-formed intervals; both inputs must be non-empty.
func SubtractOne(source, sub Interval) ([]Interval, error) {
	if source.Empty() || sub.Empty() {
		return nil, ErrInconsistentIntervals
	}

	switch {
	case !sub.End.After(source.Start):
		// Subtrahend entirely before, boundary contact included.
		return []Interval{source}, nil
	case !source.End.After(sub.Start):
		// Subtrahend entirely after, boundary contact included.
		return []Interval{source}, nil
	case !sub.Start.After(source.Start) && !source.End.After(sub.End):
		// Subtrahend covers the whole source.
		return nil, nil
	case !sub.Start.After(source.Start) && sub.End.Before(source.End):
		// Subtrahend covers the head.
		return []Interval{{Start: sub.End, End: source.End}}, nil
	case source.Start.Before(sub.Start) && !source.End.After(sub.End):
		// Subtrahend covers the tail.
		return []Interval{{Start: source.Start, End: sub.Start}}, nil
	case source.Start.Before(sub.Start) && sub.End.Before(source.End):
		// Subtrahend strictly inside: split in two.
		return []Interval{
			{Start: source.Start, End: sub.Start},
			{Start: sub.End, End: source.End},
		}, nil
	}

	return nil, ErrInconsistentIntervals
}

// SubtractMany removes every subtrahend from source, exactly. Subtrahends may
// overlap each other and arrive in any order; the final result set does not
// depend on their order. The result holds at most len(subs)+1 pairwise
// disjoint sub-intervals of source whose union is source minus the union of
// all subtrahends.
func SubtractMany(source Interval, subs []Interval) ([]Interval, error) {
	return subtractFrom(source, subs, 0)
}

// subtractFrom applies subs[from:] to source. The remaining subtrahends are
// tracked by index into the shared slice, so no intermediate list copies are
// made. When a subtrahend splits the source, both halves are processed
// independently against the rest: a later subtrahend may overlap either half,
// or both.
func subtractFrom(source Interval, subs []Interval, from int) ([]Interval, error) {
	remaining := source
	for i := from; i < len(subs); i++ {
		pieces, err := SubtractOne(remaining, subs[i])
		if err != nil {
			return nil, err
		}
		switch len(pieces) {
		case 0:
			// Source fully consumed.
			return nil, nil
		case 1:
			remaining = pieces[0]
		case 2:
			head, err := subtractFrom(pieces[0], subs, i+1)
			if err != nil {
				return nil, err
			}
			tail, err := subtractFrom(pieces[1], subs, i+1)
			if err != nil {
				return nil, err
			}
			return append(head, tail...), nil
		}
	}
	return []Interval{remaining}, nil
}

// SubtractAll applies SubtractMany to each source independently and
// concatenates the results. Sources are assumed pairwise disjoint; the
// function does not verify that.
func SubtractAll(sources, subs []Interval) ([]Interval, error) {
	var out []Interval
	for _, src := range sources {
		pieces, err := SubtractMany(src, subs)
		if err != nil {
			return nil, err
		}
		out = append(out, pieces...)
	}
	return out, nil
}
