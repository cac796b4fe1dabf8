// Package timekey derives the ticket storage key from the localized creation
// time. The key has second resolution: two tickets created within the same
// displayed second get the same key and the later write replaces the earlier.
package timekey

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultZone is used when no timezone is configured.
const DefaultZone = "America/Argentina/Cordoba"

// isoLayout mirrors the UTC millisecond format already stored in createdAtIso.
const isoLayout = "2006-01-02T15:04:05.000Z"

var diasSemana = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var (
	commaRun   = regexp.MustCompile(`,\s*`)
	spaceRun   = regexp.MustCompile(`\s+`)
	notAlnum   = regexp.MustCompile(`[^a-z0-9]`)
	underscore = regexp.MustCompile(`_+`)
)

// Stamp is the creation instant rendered three ways. Display and ISO always
// describe the same instant; Key is derived from Display.
type Stamp struct {
	Display string
	ISO     string
	Key     string
}

// Generator renders stamps in a fixed location.
type Generator struct {
	loc *time.Location
	now func() time.Time
}

// NewGenerator loads the named zone. Argentina has no DST, so a missing tzdata
// database falls back to a fixed UTC-3 offset.
func NewGenerator(zone string) *Generator {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.FixedZone("-03", -3*60*60)
	}
	return &Generator{loc: loc, now: time.Now}
}

// WithClock replaces the wall clock, mainly for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	return &Generator{loc: g.loc, now: now}
}

func (g *Generator) Location() *time.Location { return g.loc }

// Ahora stamps the current instant.
func (g *Generator) Ahora() Stamp {
	return g.Para(g.now())
}

// Para stamps t. It is a pure function of t and the generator's location.
func (g *Generator) Para(t time.Time) Stamp {
	display := Display(t.In(g.loc))
	return Stamp{
		Display: display,
		ISO:     t.UTC().Format(isoLayout),
		Key:     SanitizarClave(display),
	}
}

// Display formats t as "jueves, 13/11/2025, 18:42:31" in t's own location.
func Display(t time.Time) string {
	return fmt.Sprintf("%s, %s", diasSemana[t.Weekday()], t.Format("02/01/2006, 15:04:05"))
}

// SanitizarClave lowercases, strips accents and collapses every run of
// characters outside [a-z0-9] into one underscore, trimming both ends.
func SanitizarClave(display string) string {
	s := strings.ToLower(display)
	s = commaRun.ReplaceAllString(s, " ")
	s = spaceRun.ReplaceAllString(s, " ")
	s = quitarAcentos(s)
	s = notAlnum.ReplaceAllString(s, "_")
	s = underscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func quitarAcentos(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
