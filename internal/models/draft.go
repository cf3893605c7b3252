package models

// Draft is a scratch copy of a slide held while it is being edited.
// Changes to a draft are invisible to the library and the queue until the
// result of Slide is committed.
type Draft struct {
	slide Slide
}

// NewDraft starts editing a copy of s. Missing contents become a single
// empty block and a missing layout becomes single column.
func NewDraft(s Slide) *Draft {
	s = s.Clone()
	if len(s.Contents) == 0 {
		s.Contents = []string{""}
	}
	if !s.LayoutType.Valid() {
		s.LayoutType = LayoutOneCol
	}
	return &Draft{slide: s}
}

// SetLayout switches the layout and reshapes contents at once.
func (d *Draft) SetLayout(layout LayoutType) {
	if !layout.Valid() {
		return
	}
	d.slide.LayoutType = layout
	d.slide.Contents = Reshape(d.slide.Contents, layout)
}

// SetContent replaces block i. Out of range indexes are ignored.
func (d *Draft) SetContent(i int, text string) {
	if i < 0 || i >= len(d.slide.Contents) {
		return
	}
	d.slide.Contents[i] = text
}

func (d *Draft) SetTitle(title string) { d.slide.Title = title }

func (d *Draft) SetNotes(notes string) { d.slide.Notes = notes }

func (d *Draft) SetHidden(hidden bool) { d.slide.Hidden = hidden }

// Slide returns the value to commit.
func (d *Draft) Slide() Slide {
	return d.slide.Normalize().Clone()
}
