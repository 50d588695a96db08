package pageplan

import "github.com/rcliao/pressplan/internal/model"

// ArchiveMode says where the paginated post archive lives.
type ArchiveMode int

const (
	// ArchiveDisabled: a static front page is set and no posts page exists,
	// so no archive pages are generated.
	ArchiveDisabled ArchiveMode = iota
	// ArchiveRoot: no front or posts page; the archive is the site root.
	ArchiveRoot
	// ArchivePostsPage: the archive lives at the designated posts page.
	ArchivePostsPage
)

func (m ArchiveMode) String() string {
	switch m {
	case ArchiveRoot:
		return "root"
	case ArchivePostsPage:
		return "posts-page"
	default:
		return "disabled"
	}
}

// ArchiveBase is the resolved location of the post archive.
type ArchiveBase struct {
	Mode ArchiveMode
	URI  string
}

// ArchiveAtPostsPage roots the archive at the designated posts page uri.
func ArchiveAtPostsPage(uri string) ArchiveBase {
	return ArchiveBase{Mode: ArchivePostsPage, URI: uri}
}

// ArchiveAtRoot roots the archive at "/".
func ArchiveAtRoot() ArchiveBase {
	return ArchiveBase{Mode: ArchiveRoot, URI: "/"}
}

// ArchiveOff disables the post archive.
func ArchiveOff() ArchiveBase {
	return ArchiveBase{Mode: ArchiveDisabled}
}

// Path returns the base path for BuildArchivePages, or false when the
// archive is disabled.
func (b ArchiveBase) Path() (string, bool) {
	switch b.Mode {
	case ArchivePostsPage:
		return b.URI, true
	case ArchiveRoot:
		return "/", true
	}
	return "", false
}

// ResolveArchiveBase picks the archive location from the site's pages:
// a posts page wins, otherwise a static front page disables the archive,
// otherwise the archive sits at "/".
func ResolveArchiveBase(pages []model.Page) ArchiveBase {
	frontPage := false
	for _, p := range pages {
		if p.IsPostsPage {
			return ArchiveAtPostsPage(p.URI)
		}
		if p.IsFrontPage {
			frontPage = true
		}
	}
	if frontPage {
		return ArchiveOff()
	}
	return ArchiveAtRoot()
}
