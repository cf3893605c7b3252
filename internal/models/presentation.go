package models

import "time"

// LayoutType controls how many content blocks a slide carries
type LayoutType string

const (
	LayoutOneCol   LayoutType = "1-col"
	LayoutTwoCol   LayoutType = "2-col"
	LayoutThreeCol LayoutType = "3-col"
	LayoutFourQuad LayoutType = "4-quad"
)

// Slots returns the number of content blocks the layout expects.
// Unknown layouts are treated as single column.
func (l LayoutType) Slots() int {
	switch l {
	case LayoutTwoCol:
		return 2
	case LayoutThreeCol:
		return 3
	case LayoutFourQuad:
		return 4
	default:
		return 1
	}
}

// Valid reports whether l is one of the known layouts
func (l LayoutType) Valid() bool {
	switch l {
	case LayoutOneCol, LayoutTwoCol, LayoutThreeCol, LayoutFourQuad:
		return true
	}
	return false
}

// SlideType discriminates library slides from scripture verses
type SlideType string

const (
	SlideTypeSlide SlideType = "slide"
	SlideTypeVerse SlideType = "verse"
)

// Slide represents a single unit of presentable text
type Slide struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Contents   []string   `json:"contents"`
	LayoutType LayoutType `json:"layoutType,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Hidden     bool       `json:"hidden,omitempty"`
	Source     string     `json:"source"`
	Type       SlideType  `json:"type"`
}

// Clone returns a deep copy of the slide
func (s Slide) Clone() Slide {
	s.Contents = append([]string(nil), s.Contents...)
	return s
}

// Normalize returns a copy whose layout is set and whose contents match
// the layout's slot count.
func (s Slide) Normalize() Slide {
	if !s.LayoutType.Valid() {
		s.LayoutType = LayoutOneCol
	}
	s.Contents = Reshape(s.Contents, s.LayoutType)
	return s
}

// Reshape truncates or pads contents with empty strings so it has exactly
// layout.Slots() entries. Existing entries keep their position.
func Reshape(contents []string, layout LayoutType) []string {
	n := layout.Slots()
	out := make([]string, n)
	copy(out, contents)
	return out
}

// Section represents a named run of slides within a deck
type Section struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// Deck represents one imported source document
type Deck struct {
	ID       string     `json:"id"`
	FileName string     `json:"fileName"`
	Sections []*Section `json:"sections"`
}

// LibraryFile represents the root structure of library.json
type LibraryFile struct {
	Decks  []*Deck `json:"decks"`
	Verses []Slide `json:"verses"`
}

// QueueEntry is a slide copied into the live queue with its own identity
type QueueEntry struct {
	Slide
	QueueID string `json:"queueId"`
}

// MassSetup is a named snapshot of a queue
type MassSetup struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Queue     []QueueEntry `json:"queue"`
	CreatedAt time.Time    `json:"createdAt"`
}
