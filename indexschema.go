package docbolt

import "strings"

// The key-compression layer upstream prefixes compacted field names
// with '|', which cannot appear in a physical identifier. We swap the
// leading sentinel for a fixed substitute; the compression layer owns
// the reverse mapping.
const (
	fieldNameSentinel   = '|'
	sentinelSubstitute  = "__"
	indexGroupSeparator = ", "
)

func escapeFieldName(name string) string {
	if name != "" && name[0] == fieldNameSentinel {
		return sentinelSubstitute + name[1:]
	}
	return name
}

// CompileIndexSchema renders a collection schema as the physical
// index declaration string: the escaped primary key first, then each
// declared group — a bare name for a single field, "[a+b]" for a
// compound — joined by ", ".
func CompileIndexSchema(scm *CollectionSchema) (string, error) {
	if err := scm.validate(); err != nil {
		return "", err
	}
	var buf strings.Builder
	for i, group := range scm.indexGroups() {
		if i > 0 {
			buf.WriteString(indexGroupSeparator)
		}
		buf.WriteString(renderIndexGroup(group))
	}
	return buf.String(), nil
}

func renderIndexGroup(group IndexDef) string {
	if len(group) == 1 {
		return escapeFieldName(group[0])
	}
	escaped := make([]string, len(group))
	for i, f := range group {
		escaped[i] = escapeFieldName(f)
	}
	return "[" + strings.Join(escaped, "+") + "]"
}

func makeIndexBucketName(group IndexDef) []byte {
	return []byte("i_" + renderIndexGroup(group))
}
