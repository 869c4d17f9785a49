// # internal/scanner/types.go
package scanner

// Kind classifies a PHP type declaration.
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindTrait     Kind = "trait"
)

// Declaration is a discovered type definition. Immutable once created.
type Declaration struct {
	SimpleName string
	Namespace  string // Backslash-segmented qualifier, empty for global types
	FQN        string // Namespace + "\" + SimpleName, or SimpleName alone
	Kind       Kind
	SourcePath string // Absolute file path
	Offset     int    // Byte offset of the keyword+name span in the source file
}

// QualifiedName joins a namespace and a simple name with the PHP separator.
func QualifiedName(namespace, simple string) string {
	if namespace == "" {
		return simple
	}
	return namespace + `\` + simple
}
