// Package selection tracks thumbnails picked with modifier-clicks.
//
// Membership is keyed by image URL. Two images served from the same URL are
// indistinguishable and select together.
package selection

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/wallview/internal/input"
)

// Set is an insertion-ordered set of selected image URLs.
type Set struct {
	order  []string
	index  map[string]int
	logger *log.Logger
}

// New creates an empty Set. logger may be nil.
func New(logger *log.Logger) *Set {
	return &Set{index: map[string]int{}, logger: logger}
}

// Click handles a click on the thumbnail for url.
//
// Only a Ctrl- or Meta-held click toggles membership; it reports true so the
// caller can stop the click from also opening the viewer. Plain clicks return
// false and leave the selection untouched.
func (s *Set) Click(url string, mods input.Modifiers) bool {
	if !mods.Command() {
		return false
	}

	if s.Has(url) {
		s.remove(url)
	} else {
		s.index[url] = len(s.order)
		s.order = append(s.order, url)
	}

	if s.logger != nil {
		s.logger.Debug("selection changed", "url", url, "selected", s.Len())
	}
	return true
}

// DocumentClick clears the selection when a click lands outside image cards,
// view controls and pagination. It reports whether anything was cleared.
func (s *Set) DocumentClick(region input.Region) bool {
	switch region {
	case input.RegionImageCard, input.RegionViewControls, input.RegionPagination:
		return false
	}
	if s.Len() == 0 {
		return false
	}
	s.Clear()
	return true
}

// Has reports whether url is selected.
func (s *Set) Has(url string) bool {
	_, ok := s.index[url]
	return ok
}

// Len returns the number of selected URLs.
func (s *Set) Len() int { return len(s.order) }

// Items returns the selected URLs in the order they were selected.
func (s *Set) Items() []string {
	return append([]string(nil), s.order...)
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.order = nil
	s.index = map[string]int{}
}

func (s *Set) remove(url string) {
	i := s.index[url]
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.index, url)
	for j := i; j < len(s.order); j++ {
		s.index[s.order[j]] = j
	}
}
