package primitives

import (
	"errors"
	"fmt"
	"strings"
)

// Separator delimits path segments.
const Separator = "/"

// SegmentKind classifies one segment of a state path.
type SegmentKind int

const (
	// SegmentRoot is the empty leading segment of an absolute path.
	SegmentRoot SegmentKind = iota
	// SegmentSelf is ".".
	SegmentSelf
	// SegmentParent is "..".
	SegmentParent
	// SegmentChild is a child name lookup.
	SegmentChild
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentRoot:
		return "root"
	case SegmentSelf:
		return "self"
	case SegmentParent:
		return "parent"
	case SegmentChild:
		return "child"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// Segment is one parsed path component.
type Segment struct {
	Kind SegmentKind
	Name string
}

var (
	ErrEmptyPath = errors.New("path cannot be empty")
	ErrBadName   = errors.New("invalid state name")
)

// SplitPath parses a slash-delimited state path into segments.
// A leading "/" yields a SegmentRoot; empty inner and trailing segments are
// skipped, so "/" is just the root and "a/" is the same as "a".
func SplitPath(path string) ([]Segment, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	raw := strings.Split(path, Separator)
	segs := make([]Segment, 0, len(raw))
	for i, part := range raw {
		switch part {
		case "":
			if i == 0 {
				segs = append(segs, Segment{Kind: SegmentRoot})
			}
		case ".":
			segs = append(segs, Segment{Kind: SegmentSelf, Name: part})
		case "..":
			segs = append(segs, Segment{Kind: SegmentParent, Name: part})
		default:
			segs = append(segs, Segment{Kind: SegmentChild, Name: part})
		}
	}
	return segs, nil
}

// ValidateName checks that name can be used as a state name: non-empty, free
// of separators and not one of the relative markers.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrBadName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q is reserved", ErrBadName, name)
	case strings.Contains(name, Separator):
		return fmt.Errorf("%w: %q contains %q", ErrBadName, name, Separator)
	}
	return nil
}

// JoinPath builds an absolute path from the names below the root.
// JoinPath(nil) is "/".
func JoinPath(names []string) string {
	return Separator + strings.Join(names, Separator)
}
