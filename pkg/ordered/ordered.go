// Package ordered implements the try-in-order pattern used in two places:
// picking the first reachable backend and finding the first XML repair
// strategy that yields a parseable document.
package ordered

import "errors"

// ErrNoCandidates is returned by First when the candidate list is empty.
var ErrNoCandidates = errors.New("no candidates")

// First applies apply to each candidate in order and returns the first result
// that validate accepts, along with the candidate that produced it. A nil
// validate accepts any result apply returned without error. When every
// candidate fails, the per-candidate errors come back joined.
func First[C, T any](candidates []C, apply func(C) (T, error), validate func(T) error) (T, C, error) {
	var (
		zeroT T
		zeroC C
		errs  []error
	)
	for _, c := range candidates {
		out, err := apply(c)
		if err == nil && validate != nil {
			err = validate(out)
		}
		if err == nil {
			return out, c, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return zeroT, zeroC, ErrNoCandidates
	}
	return zeroT, zeroC, errors.Join(errs...)
}
