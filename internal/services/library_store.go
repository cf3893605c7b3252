package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"divine-deck/internal/models"
)

var (
	ErrSlideNotFound   = errors.New("slide not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrDeckNotFound    = errors.New("deck not found")
)

// LibraryFileName is the library document inside the data directory
const LibraryFileName = "library.json"

// LibraryStore manages decks and verses in a JSON file
type LibraryStore struct {
	mu       sync.RWMutex
	filePath string
	data     *models.LibraryFile
}

// NewLibraryStore creates a new library store and loads data
func NewLibraryStore(dataPath string) (*LibraryStore, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store := &LibraryStore{
		filePath: filepath.Join(dataPath, LibraryFileName),
		data:     &models.LibraryFile{},
	}

	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	return store, nil
}

// Path returns the library file location
func (s *LibraryStore) Path() string {
	return s.filePath
}

// Load reads library.json or keeps an empty library if the file doesn't exist
func (s *LibraryStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		log.Printf("Library file not found, starting with an empty library: %s", s.filePath)
		return nil
	}

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to read library file: %w", err)
	}

	var file models.LibraryFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("Failed to parse %s, keeping current library: %v", LibraryFileName, err)
		return nil
	}

	for _, deck := range file.Decks {
		for _, section := range deck.Sections {
			for i := range section.Slides {
				section.Slides[i] = section.Slides[i].Normalize()
			}
		}
	}
	for i := range file.Verses {
		file.Verses[i] = file.Verses[i].Normalize()
	}

	s.data = &file
	log.Printf("Loaded %d decks and %d verses from %s", len(file.Decks), len(file.Verses), s.filePath)
	return nil
}

// save atomically writes library.json (temp file → rename)
// Must be called with lock held
func (s *LibraryStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}

	tempPath := s.filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	file, err := os.OpenFile(tempPath, os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open temp file for sync: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	file.Close()

	if err := os.Rename(tempPath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Save atomically writes library.json
func (s *LibraryStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Replace swaps the whole library and persists it
func (s *LibraryStore) Replace(file models.LibraryFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = &file
	return s.save()
}

// Decks returns a copy of every deck. Hidden slides are left out unless
// includeHidden is set.
func (s *LibraryStore) Decks(includeHidden bool) []models.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Deck, 0, len(s.data.Decks))
	for _, deck := range s.data.Decks {
		out = append(out, copyDeck(deck, includeHidden))
	}
	return out
}

// Deck returns a copy of one deck including hidden slides
func (s *LibraryStore) Deck(deckID string) (models.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, deck := range s.data.Decks {
		if deck.ID == deckID {
			return copyDeck(deck, true), nil
		}
	}
	return models.Deck{}, fmt.Errorf("%w: %s", ErrDeckNotFound, deckID)
}

// Verses returns a copy of the verse collection
func (s *LibraryStore) Verses() []models.Slide {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Slide, 0, len(s.data.Verses))
	for _, v := range s.data.Verses {
		out = append(out, v.Clone())
	}
	return out
}

// FindSlide looks a slide up by id in decks first, then verses.
// Hidden slides are still addressable.
func (s *LibraryStore) FindSlide(slideID string) (models.Slide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, deck := range s.data.Decks {
		for _, section := range deck.Sections {
			for _, slide := range section.Slides {
				if slide.ID == slideID {
					return slide.Clone(), nil
				}
			}
		}
	}
	for _, verse := range s.data.Verses {
		if verse.ID == slideID {
			return verse.Clone(), nil
		}
	}
	return models.Slide{}, fmt.Errorf("%w: %s", ErrSlideNotFound, slideID)
}

// FindSection returns a copy of a section including hidden slides
func (s *LibraryStore) FindSection(sectionID string) (models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if section, _ := s.section(sectionID); section != nil {
		return copySection(section, true), nil
	}
	return models.Section{}, fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
}

// UpdateSlide replaces every deck slide and verse sharing edited's id.
// commit runs while the library lock is still held so callers can update
// other copies before any reader sees the new library state.
// The in-memory edit stands even if persisting it fails.
func (s *LibraryStore) UpdateSlide(edited models.Slide, commit func(models.Slide)) (int, error) {
	edited = edited.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, deck := range s.data.Decks {
		for _, section := range deck.Sections {
			for i := range section.Slides {
				if section.Slides[i].ID == edited.ID {
					section.Slides[i] = edited.Clone()
					n++
				}
			}
		}
	}
	for i := range s.data.Verses {
		if s.data.Verses[i].ID == edited.ID {
			s.data.Verses[i] = edited.Clone()
			n++
		}
	}

	if commit != nil {
		commit(edited)
	}

	if n == 0 {
		return 0, nil
	}
	if err := s.save(); err != nil {
		return n, fmt.Errorf("failed to save after updating slide: %w", err)
	}

	log.Printf("Updated slide %s in %d library location(s)", edited.ID, n)
	return n, nil
}

// AddSection appends a new empty section to a deck
func (s *LibraryStore) AddSection(deckID, title string) (models.Section, error) {
	if strings.TrimSpace(title) == "" {
		return models.Section{}, fmt.Errorf("title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, deck := range s.data.Decks {
		if deck.ID != deckID {
			continue
		}
		section := &models.Section{ID: "sec-" + uuid.NewString(), Title: title, Slides: []models.Slide{}}
		deck.Sections = append(deck.Sections, section)
		if err := s.save(); err != nil {
			return models.Section{}, fmt.Errorf("failed to save after adding section: %w", err)
		}
		log.Printf("Added section %q to deck %s", title, deckID)
		return copySection(section, true), nil
	}
	return models.Section{}, fmt.Errorf("%w: %s", ErrDeckNotFound, deckID)
}

// RenameSection changes a section title
func (s *LibraryStore) RenameSection(sectionID, title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	section, _ := s.section(sectionID)
	if section == nil {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}
	section.Title = title
	if err := s.save(); err != nil {
		return fmt.Errorf("failed to save after renaming section: %w", err)
	}
	return nil
}

// AddSlide appends a slide to a section. A missing id is generated and the
// source defaults to the owning deck's file name.
func (s *LibraryStore) AddSlide(sectionID string, slide models.Slide) (models.Slide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	section, deck := s.section(sectionID)
	if section == nil {
		return models.Slide{}, fmt.Errorf("%w: %s", ErrSectionNotFound, sectionID)
	}

	slide = slide.Normalize()
	if slide.ID == "" {
		slide.ID = "s-" + uuid.NewString()
	}
	if slide.Type == "" {
		slide.Type = models.SlideTypeSlide
	}
	if slide.Source == "" {
		slide.Source = deck.FileName
	}
	section.Slides = append(section.Slides, slide)

	if err := s.save(); err != nil {
		return models.Slide{}, fmt.Errorf("failed to save after adding slide: %w", err)
	}
	return slide.Clone(), nil
}

// section must be called with lock held
func (s *LibraryStore) section(sectionID string) (*models.Section, *models.Deck) {
	for _, deck := range s.data.Decks {
		for _, section := range deck.Sections {
			if section.ID == sectionID {
				return section, deck
			}
		}
	}
	return nil, nil
}

// SearchResult is either a matching section or a matching slide
type SearchResult struct {
	Kind    string          `json:"kind"`
	Section *models.Section `json:"section,omitempty"`
	Slide   *models.Slide   `json:"slide,omitempty"`
	Source  string          `json:"source,omitempty"`
}

// Search matches section titles, slide titles and contents, and verses.
// Single-word terms also match title words within a small edit distance.
// Each section and slide appears at most once.
func (s *LibraryStore) Search(term string) []SearchResult {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []SearchResult{}
	added := map[string]bool{}

	addSlide := func(slide models.Slide) {
		if added["slide-"+slide.ID] || !slideMatches(slide, term) {
			return
		}
		c := slide.Clone()
		results = append(results, SearchResult{Kind: "slide", Slide: &c})
		added["slide-"+slide.ID] = true
	}

	for _, deck := range s.data.Decks {
		for _, section := range deck.Sections {
			if !added["section-"+section.ID] && textMatches(section.Title, term) {
				c := copySection(section, false)
				results = append(results, SearchResult{Kind: "section", Section: &c, Source: deck.FileName})
				added["section-"+section.ID] = true
			}
			for _, slide := range section.Slides {
				addSlide(slide)
			}
		}
	}
	for _, verse := range s.data.Verses {
		addSlide(verse)
	}
	return results
}

func slideMatches(slide models.Slide, term string) bool {
	if textMatches(slide.Title, term) {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(slide.Contents, " ")), term)
}

func textMatches(text, term string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, term) {
		return true
	}
	if strings.ContainsRune(term, ' ') || len(term) < 4 {
		return false
	}
	maxDistance := 1
	if len(term) >= 8 {
		maxDistance = 2
	}
	for _, word := range strings.FieldsFunc(lower, isWordBreak) {
		if levenshtein.ComputeDistance(word, term) <= maxDistance {
			return true
		}
	}
	return false
}

func isWordBreak(r rune) bool {
	return r == ' ' || r == ':' || r == ',' || r == '-' || r == '.' || r == '!' || r == '?'
}

// Watch reloads the library whenever library.json changes on disk until ctx
// is cancelled.
func (s *LibraryStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create library watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic saves replace the file via rename.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		return fmt.Errorf("failed to watch library directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.filePath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Load(); err != nil {
				log.Printf("Library reload failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Library watcher error: %v", err)
		}
	}
}

func copyDeck(deck *models.Deck, includeHidden bool) models.Deck {
	out := models.Deck{ID: deck.ID, FileName: deck.FileName, Sections: make([]*models.Section, 0, len(deck.Sections))}
	for _, section := range deck.Sections {
		c := copySection(section, includeHidden)
		out.Sections = append(out.Sections, &c)
	}
	return out
}

func copySection(section *models.Section, includeHidden bool) models.Section {
	out := models.Section{ID: section.ID, Title: section.Title, Slides: make([]models.Slide, 0, len(section.Slides))}
	for _, slide := range section.Slides {
		if slide.Hidden && !includeHidden {
			continue
		}
		out.Slides = append(out.Slides, slide.Clone())
	}
	return out
}
