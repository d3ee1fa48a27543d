// Package lcs computes minimal edit scripts between two sequences of hashable
// elements. Elements are interned into runes and diffed with diffmatchpatch,
// so the longest common subsequence is what survives as DiffEqual runs.
package lcs

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Surrogate halves are not valid runes; interned ids skip over them.
const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
	firstRune    = 1
)

// Sequence is a read-only view of elements compared by hash.
type Sequence interface {
	Len() int
	Hash(i int) string
}

// Change is one edit run: OriginalLength elements at OriginalStart are
// replaced by ModifiedLength elements at ModifiedStart. Either length may be
// zero, never both.
type Change struct {
	OriginalStart  int
	OriginalLength int
	ModifiedStart  int
	ModifiedLength int
}

// Strings adapts a string slice to Sequence.
type Strings []string

// Len implements Sequence.
func (s Strings) Len() int { return len(s) }

// Hash implements Sequence.
func (s Strings) Hash(i int) string { return s[i] }

// Diff returns the ascending edit runs turning original into modified.
func Diff(original, modified Sequence) []Change {
	interner := newInterner()
	src := interner.runes(original)
	dst := interner.runes(modified)

	if len(src) == 0 && len(dst) == 0 {
		return nil
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	diffs := dmp.DiffMainRunes(src, dst, false)

	return toChanges(diffs)
}

func toChanges(diffs []diffmatchpatch.Diff) []Change {
	var (
		changes    []Change
		pending    *Change
		origOffset int
		modOffset  int
	)

	flush := func() {
		if pending != nil {
			changes = append(changes, *pending)
			pending = nil
		}
	}

	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)

		if d.Type == diffmatchpatch.DiffEqual {
			flush()

			origOffset += n
			modOffset += n

			continue
		}

		if pending == nil {
			pending = &Change{OriginalStart: origOffset, ModifiedStart: modOffset}
		}

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			pending.OriginalLength += n
			origOffset += n
		case diffmatchpatch.DiffInsert:
			pending.ModifiedLength += n
			modOffset += n
		case diffmatchpatch.DiffEqual:
		}
	}

	flush()

	return changes
}

// interner assigns one rune per distinct hash across both sequences.
type interner struct {
	ids  map[string]rune
	next rune
}

func newInterner() *interner {
	return &interner{ids: make(map[string]rune), next: firstRune}
}

func (in *interner) runes(seq Sequence) []rune {
	out := make([]rune, seq.Len())

	for i := range out {
		h := seq.Hash(i)

		r, ok := in.ids[h]
		if !ok {
			r = in.next
			in.ids[h] = r

			in.next++
			if in.next == surrogateMin {
				in.next = surrogateMax + 1
			}
		}

		out[i] = r
	}

	return out
}
