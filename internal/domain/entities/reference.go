package entities

import (
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/samber/lo"
)

// RefKind is the namespace a reference lives in under "refs/".
type RefKind string

const (
	RefKindBranch RefKind = "heads"
	RefKindTag    RefKind = "tags"
)

//nolint:gochecknoglobals // derived from go-git so the prefixes stay in one place
var (
	branchPrefix = plumbing.NewBranchReferenceName("").String()
	tagPrefix    = plumbing.NewTagReferenceName("").String()
)

// RefKey identifies a reference by kind and decoded short name.
// It is the key destination refs are looked up by, so path strings never leak past the host boundary.
type RefKey struct {
	Kind RefKind
	Name string
}

// BranchKey returns the key of branch name.
func BranchKey(name string) RefKey {
	return RefKey{Kind: RefKindBranch, Name: name}
}

// TagKey returns the key of tag name.
func TagKey(name string) RefKey {
	return RefKey{Kind: RefKindTag, Name: name}
}

// RefName returns the git reference name "refs/<kind>/<name>" with the name verbatim.
// This is what the host stores; escaping it for a URL is the HTTP client's job.
func (k RefKey) RefName() string {
	if k.Kind == RefKindTag {
		return plumbing.NewTagReferenceName(k.Name).String()
	}
	return plumbing.NewBranchReferenceName(k.Name).String()
}

// FullPath builds "refs/<kind>/<encoded name>". Each "/"-separated segment of the
// name is percent-encoded on its own, so slashes survive and "%" never does.
func (k RefKey) FullPath() string {
	return RefKey{Kind: k.Kind, Name: encodeRefName(k.Name)}.RefName()
}

func (k RefKey) String() string {
	return string(k.Kind) + "/" + k.Name
}

// ParseRefName is the inverse of RefKey.RefName. It returns false for anything
// outside refs/heads and refs/tags (pull request refs, notes, ...).
func ParseRefName(refName string) (RefKey, bool) {
	name := plumbing.ReferenceName(refName)
	switch {
	case name.IsBranch():
		return RefKey{Kind: RefKindBranch, Name: strings.TrimPrefix(refName, branchPrefix)}, true
	case name.IsTag():
		return RefKey{Kind: RefKindTag, Name: strings.TrimPrefix(refName, tagPrefix)}, true
	default:
		return RefKey{}, false
	}
}

// ParseRefPath is the inverse of RefKey.FullPath.
func ParseRefPath(path string) (RefKey, bool) {
	key, ok := ParseRefName(path)
	if !ok {
		return key, false
	}

	// a "%" that does not start an escape is kept as is
	if decoded, err := url.PathUnescape(key.Name); err == nil {
		key.Name = decoded
	}
	return key, true
}

func encodeRefName(name string) string {
	segments := strings.Split(name, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// Reference is a branch or tag pointing at a commit.
type Reference struct {
	Key RefKey
	SHA string
}

// HasValidSHA reports whether SHA is a full hexadecimal object id.
func (r Reference) HasValidSHA() bool {
	return plumbing.IsHash(r.SHA)
}

// RefSet indexes the references of one repository by key.
type RefSet map[RefKey]Reference

// NewRefSet indexes refs by key; on duplicates the last one wins.
func NewRefSet(refs []Reference) RefSet {
	return lo.KeyBy(refs, func(ref Reference) RefKey {
		return ref.Key
	})
}

// Lookup returns the reference stored under key.
func (s RefSet) Lookup(key RefKey) (Reference, bool) {
	ref, ok := s[key]
	return ref, ok
}
