// # internal/scanner/extract.go
package scanner

import (
	"regexp"
	"strings"
)

var (
	namespaceRe   = regexp.MustCompile(`(?m)^\s*namespace\s+([^;{]+);`)
	declarationRe = regexp.MustCompile(`(?:\b(?:abstract|final)\s+)?\b(class|interface|trait)\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// ExtractDeclarations scans src for type declarations, rejecting matches that
// fall inside comments or string literals. Matches are returned in source
// order.
func ExtractDeclarations(path string, src []byte) []Declaration {
	regions := tokenize(src)
	namespace := extractNamespace(src, regions)

	matches := declarationRe.FindAllSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return nil
	}

	decls := make([]Declaration, 0, len(matches))
	for _, m := range matches {
		keywordStart := m[2]
		if !inCode(regions, keywordStart) {
			continue
		}

		name := string(src[m[4]:m[5]])
		// Anonymous classes: "new class extends Base" would capture the
		// extends keyword as the name.
		if name == "extends" || name == "implements" {
			continue
		}

		decls = append(decls, Declaration{
			SimpleName: name,
			Namespace:  namespace,
			FQN:        QualifiedName(namespace, name),
			Kind:       Kind(src[m[2]:m[3]]),
			SourcePath: path,
			Offset:     keywordStart,
		})
	}
	return decls
}

// extractNamespace returns the qualifier of the first namespace statement that
// sits in real code, or the empty string.
func extractNamespace(src []byte, regions []region) string {
	for _, m := range namespaceRe.FindAllSubmatchIndex(src, -1) {
		start := m[0]
		// The anchor may swallow leading whitespace; classify the keyword
		// itself.
		for start < m[1] && (src[start] == ' ' || src[start] == '\t' || src[start] == '\n' || src[start] == '\r') {
			start++
		}
		if !inCode(regions, start) {
			continue
		}
		return strings.TrimSpace(string(src[m[2]:m[3]]))
	}
	return ""
}
