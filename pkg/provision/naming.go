package provision

import "strings"

// DatabaseName derives the database identifier for a package.
//
// An identifier of the form "namespace/name" yields the namespace followed by
// the "-" separated segments of name; anything else is split on "-" alone.
// Segments are joined with "_":
//
//	acme/foo-bar   -> acme_foo_bar
//	standalone-lib -> standalone_lib
//
// Only the first "/" separates the namespace, and the namespace itself is not
// split.
func DatabaseName(pkg string) string {
	var segments []string
	if namespace, name, ok := strings.Cut(pkg, "/"); ok {
		segments = append([]string{namespace}, strings.Split(name, "-")...)
	} else {
		segments = strings.Split(pkg, "-")
	}
	return strings.Join(segments, "_")
}
