// # internal/importer/importer.go
package importer

import (
	"fmt"
	"regexp"

	"phpnav/internal/scanner"
)

// Insertion describes where a use statement belongs in a source file and the
// exact text to place there. Pure data: the caller owns the actual edit.
type Insertion struct {
	Offset int    `json:"offset"`
	Text   string `json:"text"`
}

var (
	useRe       = regexp.MustCompile(`(?m)^[ \t]*use[ \t]+[^;]+;`)
	namespaceRe = regexp.MustCompile(`(?m)^[ \t]*namespace[ \t]+[^;{]+;`)
	openTagRe   = regexp.MustCompile(`<\?(php)?`)
)

// UseStatement computes the insertion point for "use <fqn>;" in content:
// after the last existing use statement, else after the namespace
// declaration, else after the PHP open tag, else at the top of the file with
// an open tag supplied.
//
// Only use statements in the file header count. Trait-use lines inside a
// class body share the keyword but are not imports.
func UseStatement(content []byte, fqn string) Insertion {
	limit := headerEnd(content)

	var lastUse []int
	for _, loc := range useRe.FindAllIndex(content, -1) {
		if loc[0] < limit {
			lastUse = loc
		}
	}
	if lastUse != nil {
		return Insertion{
			Offset: lineEnd(content, lastUse[1]),
			Text:   fmt.Sprintf("\nuse %s;", fqn),
		}
	}

	if loc := namespaceRe.FindIndex(content); loc != nil {
		return Insertion{
			Offset: lineEnd(content, loc[1]),
			Text:   fmt.Sprintf("\n\nuse %s;", fqn),
		}
	}

	if loc := openTagRe.FindIndex(content); loc != nil {
		return Insertion{
			Offset: lineEnd(content, loc[1]),
			Text:   fmt.Sprintf("\n\nuse %s;", fqn),
		}
	}

	return Insertion{
		Offset: 0,
		Text:   fmt.Sprintf("<?php\n\nuse %s;\n", fqn),
	}
}

// headerEnd returns the offset of the first type declaration, bounding the
// region where top-level use statements can live. Files without declarations
// are all header.
func headerEnd(content []byte) int {
	if decls := scanner.ExtractDeclarations("", content); len(decls) > 0 {
		return decls[0].Offset
	}
	return len(content)
}

// lineEnd returns the offset of the end of the line containing from,
// excluding the newline itself.
func lineEnd(content []byte, from int) int {
	for j := from; j < len(content); j++ {
		if content[j] == '\n' {
			return j
		}
	}
	return len(content)
}
