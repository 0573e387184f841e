// Package service is the multi-document orchestrator: it loads markup into
// composed-tree documents, runs one inert Manager per document, and exposes
// the engine over HTTP and MCP. One Service instance per process.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/domfence/dom"
	"github.com/hazyhaar/domfence/idgen"
	"github.com/hazyhaar/domfence/inert"
	"github.com/hazyhaar/domfence/journal"
)

// ErrDocumentNotFound is returned for operations on unknown document IDs.
var ErrDocumentNotFound = errors.New("service: document not found")

// ErrElementNotFound is returned when an element ID resolves to nothing.
var ErrElementNotFound = errors.New("service: element not found")

type document struct {
	id   string
	name string
	doc  *dom.Document
	mgr  *inert.Manager
}

// Service owns all loaded documents and their inert managers. The engine is
// single-threaded per document; the service mutex serialises all access so
// concurrent transports cannot interleave mid-mutation.
type Service struct {
	mu       sync.Mutex
	docs     map[string]*document
	jrnl     *journal.Journal
	logger   *slog.Logger
	newID    idgen.Generator
	sanitize bool
}

// New creates a Service from configuration: opens the journal when one is
// configured and preloads the configured documents.
func New(cfg *Config, logger *slog.Logger) (*Service, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		docs:     make(map[string]*document),
		logger:   logger,
		newID:    idgen.Prefixed("doc_", idgen.Default),
		sanitize: cfg.SanitizeMarkup,
	}

	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath, journal.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("service: open journal: %w", err)
		}
		s.jrnl = j
	}

	for _, d := range cfg.Documents {
		if _, err := s.LoadDocument(context.Background(), d.Name, d.Markup); err != nil {
			return nil, fmt.Errorf("service: preload %q: %w", d.Name, err)
		}
	}

	return s, nil
}

// Close releases the journal.
func (s *Service) Close() error {
	if s.jrnl != nil {
		return s.jrnl.Close()
	}
	return nil
}

// Journal returns the event journal, nil when none is configured.
func (s *Service) Journal() *journal.Journal { return s.jrnl }

// LoadDocument parses markup into a new document with its own inert manager
// and returns the document ID. Markers already present in the markup
// activate immediately.
func (s *Service) LoadDocument(ctx context.Context, name, markup string) (string, error) {
	var opts []dom.ParseOption
	if s.sanitize {
		opts = append(opts, dom.WithSanitizer(dom.DefaultSanitizer()))
	}
	doc, err := dom.ParseString(markup, opts...)
	if err != nil {
		return "", fmt.Errorf("service: parse document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	mgrOpts := []inert.Option{inert.WithLogger(s.logger)}
	if s.jrnl != nil {
		mgrOpts = append(mgrOpts, inert.WithEventSink(s.jrnl.Sink(id)))
	}
	mgr, err := inert.NewManager(doc, mgrOpts...)
	if err != nil {
		return "", err
	}
	doc.Flush()

	s.docs[id] = &document{id: id, name: name, doc: doc, mgr: mgr}
	s.logger.Info("service: document loaded", "id", id, "name", name)
	return id, nil
}

// UnloadDocument drops a document and its manager.
func (s *Service) UnloadDocument(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(s.docs, id)
	s.logger.Info("service: document unloaded", "id", id)
	return nil
}

// SetInert toggles inert-ness of the element with the given id attribute.
func (s *Service) SetInert(docID, elementID string, inertOn bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[docID]
	if !ok {
		return ErrDocumentNotFound
	}
	el := d.doc.GetElementByID(elementID)
	if el == nil {
		return fmt.Errorf("%w: %q", ErrElementNotFound, elementID)
	}
	d.mgr.SetInert(el, inertOn)
	d.doc.Flush()
	return nil
}

// RootStatus describes one active inert root.
type RootStatus struct {
	Path         string `json:"path"`
	Tag          string `json:"tag"`
	ElementID    string `json:"element_id,omitempty"`
	ManagedCount int    `json:"managed_count"`
}

// ElementStatus describes one restrained element.
type ElementStatus struct {
	Path          string  `json:"path"`
	Tag           string  `json:"tag"`
	ElementID     string  `json:"element_id,omitempty"`
	SavedTabIndex *string `json:"saved_tabindex,omitempty"`
	ClaimingRoots int     `json:"claiming_roots"`
}

// Status is a point-in-time view of a document's inert state.
type Status struct {
	DocID    string          `json:"doc_id"`
	Name     string          `json:"name"`
	Roots    []RootStatus    `json:"roots"`
	Elements []ElementStatus `json:"elements"`
}

// Status reports the active roots and restrained elements of a document.
func (s *Service) Status(docID string) (*Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[docID]
	if !ok {
		return nil, ErrDocumentNotFound
	}

	st := &Status{DocID: d.id, Name: d.name}
	for _, root := range d.mgr.Roots() {
		el := root.Element()
		st.Roots = append(st.Roots, RootStatus{
			Path:         dom.Path(el),
			Tag:          el.Tag,
			ElementID:    el.ID(),
			ManagedCount: root.ManagedCount(),
		})
		for _, rec := range root.ManagedRecords() {
			recEl, err := rec.Element()
			if err != nil {
				continue
			}
			// A record shows up once even when several roots claim it.
			if containsPath(st.Elements, dom.Path(recEl)) {
				continue
			}
			roots, _ := rec.InertRoots()
			es := ElementStatus{
				Path:          dom.Path(recEl),
				Tag:           recEl.Tag,
				ElementID:     recEl.ID(),
				ClaimingRoots: len(roots),
			}
			if saved, has, _ := rec.SavedTabIndex(); has {
				es.SavedTabIndex = &saved
			}
			st.Elements = append(st.Elements, es)
		}
	}
	return st, nil
}

func containsPath(elems []ElementStatus, path string) bool {
	for _, e := range elems {
		if e.Path == path {
			return true
		}
	}
	return false
}

// TabOrder returns the document's sequential navigation order as paths.
func (s *Service) TabOrder(docID string) ([]ElementStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[docID]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	var out []ElementStatus
	for _, n := range d.doc.TabOrder() {
		out = append(out, ElementStatus{Path: dom.Path(n), Tag: n.Tag, ElementID: n.ID()})
	}
	return out, nil
}

// Render serialises a document back to markup, inert markers and injected
// style rules included.
func (s *Service) Render(docID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[docID]
	if !ok {
		return "", ErrDocumentNotFound
	}
	return d.doc.RenderString()
}

// Documents lists loaded documents as (id, name) pairs.
func (s *Service) Documents() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.docs))
	for id, d := range s.docs {
		out[id] = d.name
	}
	return out
}
