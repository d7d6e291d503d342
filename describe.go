package gitversion

import "fmt"

// DirtySuffix is appended to the version when the working tree is dirty.
const DirtySuffix = ".dirty"

// nearestTag is the result of walking first-parent history for a tag.
type nearestTag struct {
	name     string
	distance int
	found    bool
}

// indexTags maps commit hashes to the single tag that represents them.
// Tags rejected by cfg are dropped. When several tags share a commit the
// lexicographically greatest name (after prefix removal) is kept, so the
// choice does not depend on backend ordering.
func indexTags(tags map[string][]string, cfg Config) map[string]string {
	index := make(map[string]string, len(tags))
	for commit, names := range tags {
		for _, tag := range names {
			name, ok := cfg.matchTag(tag)
			if !ok {
				continue
			}
			if current, seen := index[commit]; !seen || name > current {
				index[commit] = name
			}
		}
	}
	return index
}

// findNearestTag walks first-parent history from HEAD and stops at the first
// commit carrying an indexed tag. The distance excludes the tagged commit.
func findNearestTag(backend Backend, index map[string]string) (nearestTag, error) {
	if len(index) == 0 {
		return nearestTag{}, nil
	}

	distance := 0
	for hash, err := range backend.FirstParentHistory() {
		if err != nil {
			return nearestTag{}, queryError("history", err)
		}
		if name, ok := index[hash]; ok {
			return nearestTag{name: name, distance: distance, found: true}, nil
		}
		distance++
	}

	return nearestTag{}, nil
}

// describe renders the version string:
//
//  1. tag at HEAD and clean tree: "<tag>"
//  2. tag reachable: "<tag>.dirty" when dirty, else "<tag>-<distance>-g<hash>"
//  3. no tag: "<hash>", plus ".dirty" when dirty
func describe(tag nearestTag, short string, clean bool) string {
	switch {
	case tag.found && clean && tag.distance == 0:
		return tag.name
	case tag.found && !clean:
		return tag.name + DirtySuffix
	case tag.found:
		return fmt.Sprintf("%s-%d-g%s", tag.name, tag.distance, short)
	case !clean:
		return short + DirtySuffix
	default:
		return short
	}
}

func abbreviate(hash string, length int) string {
	if len(hash) <= length {
		return hash
	}
	return hash[:length]
}
