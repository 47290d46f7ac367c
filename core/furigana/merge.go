// Package furigana merges parallel kanji and kana renderings of the same
// Japanese text into a single annotated string.
//
// The two inputs are aligned with the Needleman–Wunsch global alignment
// algorithm; characters that line up are emitted once (from the kanji side,
// which is canonical), and misaligned runs become annotation groups pairing a
// kanji substring with its kana reading.
package furigana

import (
	"strings"
	"unicode"
)

// Annotation delimiters. The default output uses the Unicode interlinear
// annotation characters; markup mode uses HTML ruby tags instead.
const (
	annoAnchor     = "￹" // U+FFF9 INTERLINEAR ANNOTATION ANCHOR
	annoSeparator  = "￺" // U+FFFA INTERLINEAR ANNOTATION SEPARATOR
	annoTerminator = "￻" // U+FFFB INTERLINEAR ANNOTATION TERMINATOR
)

// isJunk reports whether ch is an ignorable separator: whitespace, the
// ideographic full stop, or the newline symbol used by the text dumps.
func isJunk(ch rune) bool {
	return unicode.IsSpace(ch) || ch == '。' || ch == '␤'
}

// cell is one position in the alignment grid: which predecessor the optimal
// path came from, whether the two characters at this position are equivalent,
// and the cumulative score.
type cell struct {
	walkLeft bool
	walkUp   bool
	isMatch  bool
	score    int
}

// Merge combines a pair of (presumably equivalent) kanji and kana strings
// into one string of kanji with furigana annotations. If useMarkup is true
// the annotations are HTML ruby tags; otherwise the Unicode interlinear
// annotation characters are used.
//
// Merge is total: any pair of finite strings, including empty ones, produces
// a result. Identical inputs come back unchanged.
func Merge(kanji, kana string, useMarkup bool) string {
	a := []rune(kanji)
	b := []rune(kana)
	n := len(a)
	m := len(b)

	// Dense grid with a +1 index shift so that row 0 / column 0 stand for
	// the virtual "before the sequence" boundary.
	table := make([][]cell, n+1)
	for i := range table {
		table[i] = make([]cell, m+1)
	}
	table[0][0] = cell{isMatch: true}
	for i := 0; i < n; i++ {
		table[i+1][0] = cell{walkLeft: true, score: -1 - i}
	}
	for j := 0; j < m; j++ {
		table[0][j+1] = cell{walkUp: true, score: -1 - j}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			match := a[i] == b[j] || (isJunk(a[i]) && isJunk(b[j]))

			// Diagonal consumes one character from each side.
			diagScore := -1
			if match {
				diagScore = 1
			}
			best := cell{
				walkLeft: true,
				walkUp:   true,
				isMatch:  match,
				score:    table[i][j].score + diagScore,
			}

			// Indels: skipping a junk character costs nothing.
			leftScore := -1
			if isJunk(a[i]) {
				leftScore = 0
			}
			if s := table[i][j+1].score + leftScore; s > best.score {
				best = cell{walkLeft: true, score: s}
			}
			upScore := -1
			if isJunk(b[j]) {
				upScore = 0
			}
			if s := table[i+1][j].score + upScore; s > best.score {
				best = cell{walkUp: true, score: s}
			}

			table[i+1][j+1] = best
		}
	}

	// Backtrace from the end, buffering mismatched runs until the next
	// matched character (or the start) flushes them as one annotation.
	var bt backtracer
	bt.useMarkup = useMarkup
	i, j := n, m
	for {
		c := table[i][j]
		switch {
		case c.walkLeft && c.walkUp:
			if c.isMatch {
				bt.flushMismatches()
				bt.emit(string(a[i-1]))
			} else {
				bt.mismatchA = append(bt.mismatchA, a[i-1])
				bt.mismatchB = append(bt.mismatchB, b[j-1])
			}
			i--
			j--
		case c.walkLeft:
			bt.mismatchA = append(bt.mismatchA, a[i-1])
			i--
		case c.walkUp:
			bt.mismatchB = append(bt.mismatchB, b[j-1])
			j--
		default:
			bt.flushMismatches()
			return bt.result()
		}
	}
}

// backtracer accumulates output segments in backtrace order (end of the text
// first); result reverses them into text order.
type backtracer struct {
	useMarkup bool
	segments  []string
	mismatchA []rune // kanji side, most recent character first
	mismatchB []rune // kana side, most recent character first
}

func (bt *backtracer) emit(s string) {
	bt.segments = append(bt.segments, s)
}

// flushMismatches drains the pending mismatch buffers into one annotation
// group. Junk characters at either end are pulled out of the group first:
// kanji-side junk is emitted plain (kanji is canonical), kana-side junk is
// dropped. No-op when both buffers are empty.
func (bt *backtracer) flushMismatches() {
	ma, mb := bt.mismatchA, bt.mismatchB
	if len(ma) == 0 && len(mb) == 0 {
		return
	}

	// Front of the buffers is the end of the run in text order.
	for len(ma) > 0 && isJunk(ma[0]) {
		bt.emit(string(ma[0]))
		ma = ma[1:]
	}
	for len(mb) > 0 && isJunk(mb[0]) {
		mb = mb[1:]
	}
	var endJunk []string
	for len(ma) > 0 && isJunk(ma[len(ma)-1]) {
		endJunk = append(endJunk, string(ma[len(ma)-1]))
		ma = ma[:len(ma)-1]
	}
	for len(mb) > 0 && isJunk(mb[len(mb)-1]) {
		mb = mb[:len(mb)-1]
	}

	kanjiPart := reverseString(ma)
	kanaPart := reverseString(mb)
	if bt.useMarkup {
		bt.emit("<ruby><rb>" + kanjiPart + "</rb><rt>" + kanaPart + "</rt></ruby>")
	} else {
		bt.emit(annoAnchor + kanjiPart + annoSeparator + kanaPart + annoTerminator)
	}
	bt.segments = append(bt.segments, endJunk...)

	bt.mismatchA = bt.mismatchA[:0]
	bt.mismatchB = bt.mismatchB[:0]
}

func (bt *backtracer) result() string {
	var sb strings.Builder
	for i := len(bt.segments) - 1; i >= 0; i-- {
		sb.WriteString(bt.segments[i])
	}
	return sb.String()
}

// reverseString joins runes stored most-recent-first back into text order.
func reverseString(rs []rune) string {
	var sb strings.Builder
	for i := len(rs) - 1; i >= 0; i-- {
		sb.WriteRune(rs[i])
	}
	return sb.String()
}
