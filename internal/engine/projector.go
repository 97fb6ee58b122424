package engine

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/reminderin/internal/cli/pagination"
)

// Projection is the derived pagination and sort display.
type Projection struct {
	Summary     string
	Meta        pagination.PageMeta
	Glyphs      map[pagination.SortKey]string
	PrevEnabled bool
	NextEnabled bool
	Page        int
	Loading     bool
}

var summaryPrinter = message.NewPrinter(language.English)

// Project derives the display of state with displayed rows on screen.
func Project(state *QueryState, displayed int) Projection {
	meta := pagination.NewPageMeta(
		state.Cursors.Depth(),
		state.PageSize,
		displayed,
		state.Total,
		state.NextCursor,
	)

	glyphs := make(map[pagination.SortKey]string, len(pagination.SortKeys()))
	for _, k := range pagination.SortKeys() {
		glyphs[k] = pagination.Indicator(state.SortKey, state.SortOrder, k)
	}

	return Projection{
		Summary:     Summary(meta),
		Meta:        meta,
		Glyphs:      glyphs,
		PrevEnabled: meta.HasPrevious,
		NextEnabled: meta.HasNext,
		Page:        meta.Page,
	}
}

// Summary renders "Showing 21-40 of 1,234", or "Showing 0-0 of 0" for an
// empty result.
func Summary(meta pagination.PageMeta) string {
	if meta.Total == 0 {
		return "Showing 0-0 of 0"
	}
	return summaryPrinter.Sprintf("Showing %d-%d of %d", meta.Start, meta.End, meta.Total)
}
