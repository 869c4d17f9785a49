// # internal/scanner/tokenizer.go
package scanner

import "sort"

type regionKind int

const (
	regionLineComment regionKind = iota
	regionBlockComment
	regionSingleQuoted
	regionDoubleQuoted
)

// region is a half-open [start, end) span of non-code text.
type region struct {
	start int
	end   int
	kind  regionKind
}

// tokenize classifies src in a single linear pass and returns every comment and
// string-literal region, ordered by start offset. Unterminated constructs
// extend to the end of the input. Escaped quotes inside string literals do not
// terminate the literal.
func tokenize(src []byte) []region {
	var regions []region
	n := len(src)

	for i := 0; i < n; {
		c := src[i]
		switch {
		case c == '/' && i+1 < n && src[i+1] == '/':
			end := lineEnd(src, i)
			regions = append(regions, region{start: i, end: end, kind: regionLineComment})
			i = end
		case c == '#':
			end := lineEnd(src, i)
			regions = append(regions, region{start: i, end: end, kind: regionLineComment})
			i = end
		case c == '/' && i+1 < n && src[i+1] == '*':
			end := n
			for j := i + 2; j+1 < n; j++ {
				if src[j] == '*' && src[j+1] == '/' {
					end = j + 2
					break
				}
			}
			regions = append(regions, region{start: i, end: end, kind: regionBlockComment})
			i = end
		case c == '\'':
			end := stringEnd(src, i, '\'')
			regions = append(regions, region{start: i, end: end, kind: regionSingleQuoted})
			i = end
		case c == '"':
			end := stringEnd(src, i, '"')
			regions = append(regions, region{start: i, end: end, kind: regionDoubleQuoted})
			i = end
		default:
			i++
		}
	}

	return regions
}

func lineEnd(src []byte, from int) int {
	for j := from; j < len(src); j++ {
		if src[j] == '\n' {
			return j
		}
	}
	return len(src)
}

func stringEnd(src []byte, from int, quote byte) int {
	for j := from + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(src)
}

// inCode reports whether offset falls outside every non-code region.
func inCode(regions []region, offset int) bool {
	i := sort.Search(len(regions), func(i int) bool {
		return regions[i].end > offset
	})
	if i == len(regions) {
		return true
	}
	return offset < regions[i].start
}
