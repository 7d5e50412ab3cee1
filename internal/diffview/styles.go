package diffview

// lineClasses maps each line kind to the CSS class a renderer should apply.
// Kept as a lookup here so the builders stay free of presentation choices.
var lineClasses = map[LineKind]string{
	LineContext:  "diff-line-context",
	LineAddition: "diff-line-addition",
	LineDeletion: "diff-line-deletion",
}

// ClassFor returns the CSS class for a line kind.
func ClassFor(kind LineKind) string {
	if class, ok := lineClasses[kind]; ok {
		return class
	}
	return lineClasses[LineContext]
}
