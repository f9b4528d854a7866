package fat12

import (
	"fmt"
	"strings"
)

// tokenizePath splits an absolute path on '/', dropping empty components.
// The bare root path "/" yields a single empty token. Relative paths are
// rejected; the engine has no working-directory concept.
func tokenizePath(path string) ([]string, error) {
	if path == "" || path[0] != '/' {
		return nil, ErrBadPath.WithMessage(fmt.Sprintf(
			"%q is not an absolute path", path))
	}

	tokens := []string{}
	for _, token := range strings.Split(path[1:], "/") {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		tokens = append(tokens, "")
	}
	return tokens, nil
}

// findEntry scans `dir` for a non-free entry whose space-trimmed name
// equals `name`, byte for byte. Matching is case-sensitive.
func (v *Volume) findEntry(dir Dir, name string) (EntryRef, RawDirent, bool, error) {
	var foundRef EntryRef
	var foundEntry RawDirent
	found := false

	err := v.forEachEntry(dir, func(ref EntryRef, entry RawDirent) (bool, error) {
		if entry.IsFree() || entry.NameString() != name {
			return false, nil
		}
		foundRef = ref
		foundEntry = entry
		found = true
		return true, nil
	})
	return foundRef, foundEntry, found, err
}

// descend resolves one path component inside `dir`, requiring a directory
// entry. Files with a matching name do not satisfy an intermediate
// component.
func (v *Volume) descend(dir Dir, name string) (Dir, error) {
	ref, entry, found, err := v.findEntry(dir, name)
	if err != nil {
		return Dir{}, err
	}
	if !found || !entry.IsDirectory() {
		return Dir{}, ErrNotFound.WithMessage(fmt.Sprintf(
			"no directory named %q", name))
	}
	return Dir{volume: v, entry: &ref}, nil
}

// resolveTokens descends from the root through every token. The single
// empty token stands for the root itself.
func (v *Volume) resolveTokens(tokens []string) (Dir, error) {
	dir := v.RootDir()
	if len(tokens) == 1 && tokens[0] == "" {
		return dir, nil
	}

	for _, token := range tokens {
		next, err := v.descend(dir, token)
		if err != nil {
			return Dir{}, err
		}
		dir = next
	}
	return dir, nil
}

// ResolveDir resolves an absolute path to a directory handle.
func (v *Volume) ResolveDir(path string) (Dir, error) {
	tokens, err := tokenizePath(path)
	if err != nil {
		return Dir{}, err
	}
	return v.resolveTokens(tokens)
}

// ResolveParentAndName splits off the final path component, resolves the
// rest to a directory, and returns both. The final component may or may
// not exist; lookup and creation both start from here.
func (v *Volume) ResolveParentAndName(path string) (Dir, string, error) {
	tokens, err := tokenizePath(path)
	if err != nil {
		return Dir{}, "", err
	}
	if len(tokens) == 1 && tokens[0] == "" {
		return Dir{}, "", ErrBadPath.WithMessage(
			"the root directory is not a valid target")
	}

	name := tokens[len(tokens)-1]
	parentTokens := tokens[:len(tokens)-1]
	if len(parentTokens) == 0 {
		parentTokens = []string{""}
	}

	parent, err := v.resolveTokens(parentTokens)
	if err != nil {
		return Dir{}, "", err
	}
	return parent, name, nil
}
