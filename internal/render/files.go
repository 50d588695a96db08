package render

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rcliao/pressplan/internal/model"
)

// stagedFile writes to a temp file in the target directory and renames it
// into place on Commit. A file it replaces is kept aside until Release so
// Rollback can put it back.
type stagedFile struct {
	final     string
	tmp       string
	bak       string
	committed bool
}

// checkTarget fails when final exists but is not a regular file.
func (f *stagedFile) checkTarget() error {
	info, err := os.Lstat(f.final)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s exists and is not a regular file", f.final)
	}
	return nil
}

func (f *stagedFile) write(encode func(io.Writer) error) error {
	dir := filepath.Dir(f.final)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := f.checkTarget(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.final)+".*")
	if err != nil {
		return err
	}
	f.tmp = tmp.Name()
	if err := encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	return tmp.Close()
}

func (f *stagedFile) Commit() error {
	if f.tmp == "" {
		return nil
	}
	if err := f.checkTarget(); err != nil {
		return err
	}
	if _, err := os.Lstat(f.final); err == nil {
		bak := filepath.Join(filepath.Dir(f.final), "."+filepath.Base(f.final)+".bak")
		if err := os.Rename(f.final, bak); err != nil {
			return err
		}
		f.bak = bak
	}
	if err := os.Rename(f.tmp, f.final); err != nil {
		if f.bak != "" {
			os.Rename(f.bak, f.final)
			f.bak = ""
		}
		return err
	}
	f.tmp = ""
	f.committed = true
	return nil
}

// Rollback undoes a successful Commit.
func (f *stagedFile) Rollback() error {
	if !f.committed {
		return nil
	}
	f.committed = false
	if f.bak == "" {
		return os.Remove(f.final)
	}
	err := os.Rename(f.bak, f.final)
	f.bak = ""
	return err
}

func (f *stagedFile) Release() error {
	f.committed = false
	if f.bak == "" {
		return nil
	}
	err := os.Remove(f.bak)
	f.bak = ""
	return err
}

func (f *stagedFile) Discard() error {
	if f.tmp == "" {
		return nil
	}
	err := os.Remove(f.tmp)
	f.tmp = ""
	return err
}

// ManifestRenderer writes the descriptors as a JSON array.
type ManifestRenderer struct {
	stagedFile
	pages []model.PageDescriptor
}

// NewManifestRenderer writes pages.json under outDir.
func NewManifestRenderer(outDir string) *ManifestRenderer {
	return &ManifestRenderer{stagedFile: stagedFile{final: filepath.Join(outDir, "pages.json")}}
}

// Path is the file the manifest is committed to.
func (m *ManifestRenderer) Path() string { return m.final }

func (m *ManifestRenderer) Render(_ context.Context, d model.PageDescriptor) error {
	m.pages = append(m.pages, d)
	return nil
}

func (m *ManifestRenderer) Close() error {
	pages := m.pages
	if pages == nil {
		pages = []model.PageDescriptor{}
	}
	return m.write(func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pages)
	})
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// SitemapRenderer writes sitemap.xml with an absolute URL per page.
type SitemapRenderer struct {
	stagedFile
	base *url.URL
	urls []sitemapURL
}

// NewSitemapRenderer writes sitemap.xml under outDir with URLs rooted at
// siteURL.
func NewSitemapRenderer(outDir, siteURL string) (*SitemapRenderer, error) {
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("parse site url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("site url %q must be absolute", siteURL)
	}
	return &SitemapRenderer{
		stagedFile: stagedFile{final: filepath.Join(outDir, "sitemap.xml")},
		base:       base,
	}, nil
}

// Path is the file the sitemap is committed to.
func (s *SitemapRenderer) Path() string { return s.final }

func (s *SitemapRenderer) Render(_ context.Context, d model.PageDescriptor) error {
	s.urls = append(s.urls, sitemapURL{Loc: s.base.JoinPath(d.Path).String()})
	return nil
}

func (s *SitemapRenderer) Close() error {
	return s.write(func(w io.Writer) error {
		return writeSitemap(w, s.urls)
	})
}

func writeSitemap(w io.Writer, urls []sitemapURL) error {
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(sitemap)
}
