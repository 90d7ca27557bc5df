// Package batch equivalence matching.
//
// Each deduplicated kind defines a match key: the normalized fields that
// decide whether a submission denotes a record that already exists. Keys are
// pure values; the actual lookup is a Scope query with no side effects.
// Normalization happens once per item at the start of its stage, so the same
// canonical form is compared, stored, and fingerprinted.
package batch

import "github.com/kindb-io/kindb/internal/normalize"

// Aliaser maps tool-specific spellings of level-of-theory names to canonical
// ones, e.g. "wb97xd" to "wb97x-d", so spelling variants of the same method
// deduplicate. Applied after case folding. A nil Aliaser means no aliases.
type Aliaser interface {
	// CanonicalMethod returns the canonical spelling of a folded method name.
	CanonicalMethod(method string) string

	// CanonicalBasis returns the canonical spelling of a folded basis name.
	CanonicalBasis(basis string) string
}

// ==============================================================================
// Normalization
// ==============================================================================

// Normalize canonicalizes the author's key fields in place: names are
// trimmed, the ORCID is trimmed with empty collapsing to nil.
func (a *Author) Normalize() {
	a.FirstName = normalize.Trim(a.FirstName)
	a.LastName = normalize.Trim(a.LastName)
	a.ORCID = normalize.TrimPtr(a.ORCID)
}

// Normalize canonicalizes the literature entry in place. The DOI is case
// folded (DOIs are case insensitive); display fields keep their case. Inline
// authors are normalized along with their parent.
func (l *Literature) Normalize() {
	l.Title = normalize.Trim(l.Title)
	l.Journal = normalize.TrimPtr(l.Journal)
	l.Publisher = normalize.TrimPtr(l.Publisher)
	l.Editors = normalize.TrimPtr(l.Editors)
	l.Edition = normalize.TrimPtr(l.Edition)
	l.ChapterTitle = normalize.TrimPtr(l.ChapterTitle)
	l.PublicationPlace = normalize.TrimPtr(l.PublicationPlace)
	l.Advisor = normalize.TrimPtr(l.Advisor)
	l.DOI = normalize.FoldPtr(l.DOI)
	l.ISBN = normalize.TrimPtr(l.ISBN)
	l.URL = normalize.TrimPtr(l.URL)

	for i := range l.Authors {
		l.Authors[i].Normalize()
	}
}

// Normalize canonicalizes the level in place. Technical identifiers (method,
// basis, and friends) are case folded; free-text descriptions are trimmed
// only.
func (l *Level) Normalize() {
	l.Method = normalize.Fold(l.Method)
	l.Basis = normalize.FoldPtr(l.Basis)
	l.AuxiliaryBasis = normalize.FoldPtr(l.AuxiliaryBasis)
	l.Dispersion = normalize.FoldPtr(l.Dispersion)
	l.Grid = normalize.FoldPtr(l.Grid)
	l.Solvent = normalize.FoldPtr(l.Solvent)
	l.SolvationMethod = normalize.FoldPtr(l.SolvationMethod)
	l.SolvationDescription = normalize.TrimPtr(l.SolvationDescription)
	l.LevelArguments = normalize.TrimPtr(l.LevelArguments)
}

// ApplyAliases rewrites the method and basis to their canonical spellings.
// Must run after Normalize so lookups see folded values.
func (l *Level) ApplyAliases(a Aliaser) {
	if a == nil {
		return
	}

	l.Method = a.CanonicalMethod(l.Method)

	if l.Basis != nil {
		basis := a.CanonicalBasis(*l.Basis)
		l.Basis = &basis
	}
}

// Normalize canonicalizes the bot's key fields in place. Names keep their
// case ("ARC" is a brand, not an identifier); optional fields collapse empty
// to nil.
func (b *Bot) Normalize() {
	b.Name = normalize.Trim(b.Name)
	b.Version = normalize.Trim(b.Version)
	b.URL = normalize.Trim(b.URL)
	b.GitHash = normalize.TrimPtr(b.GitHash)
	b.GitBranch = normalize.TrimPtr(b.GitBranch)
}

// Normalize canonicalizes the ESS descriptor's key fields in place.
func (e *ESS) Normalize() {
	e.Name = normalize.Trim(e.Name)
	e.Version = normalize.TrimPtr(e.Version)
	e.Revision = normalize.TrimPtr(e.Revision)
	e.URL = normalize.Trim(e.URL)
}

// Normalize canonicalizes the energy correction set in place.
func (e *EnCorr) Normalize() {
	e.EnergyUnit = normalize.Trim(e.EnergyUnit)

	for i, element := range e.SupportedElements {
		e.SupportedElements[i] = normalize.Trim(element)
	}
}

// Normalize canonicalizes the frequency scaling factor in place.
func (f *FreqScale) Normalize() {
	f.Source = normalize.Trim(f.Source)
}

// Normalize canonicalizes the species' descriptive fields in place.
func (s *Species) Normalize() {
	s.Label = normalize.Trim(s.Label)
	s.SMILES = normalize.TrimPtr(s.SMILES)
	s.InChI = normalize.TrimPtr(s.InChI)
	s.PointGroup = normalize.Trim(s.PointGroup)
	s.ConformationMethod = normalize.TrimPtr(s.ConformationMethod)
}

// ==============================================================================
// Match Keys
// ==============================================================================

type (
	// AuthorKey deduplicates authors on (first_name, last_name, orcid).
	AuthorKey struct {
		FirstName string
		LastName  string
		ORCID     *string
	}

	// LiteratureKey deduplicates literature on (doi, isbn). Only valid when
	// at least one of the two is present.
	LiteratureKey struct {
		DOI  *string
		ISBN *string
	}

	// LevelKey deduplicates levels on all nine descriptive fields.
	LevelKey struct {
		Method               string
		Basis                *string
		AuxiliaryBasis       *string
		Dispersion           *string
		Grid                 *string
		Solvent              *string
		SolvationMethod      *string
		SolvationDescription *string
		LevelArguments       *string
	}

	// BotKey deduplicates bots on all five fields.
	BotKey struct {
		Name      string
		Version   string
		URL       string
		GitHash   *string
		GitBranch *string
	}

	// ESSKey deduplicates ESS descriptors on (name, version, revision, url).
	ESSKey struct {
		Name     string
		Version  *string
		Revision *string
		URL      string
	}
)

// MatchKey returns the author's dedup key. Call Normalize first.
func (a *Author) MatchKey() AuthorKey {
	return AuthorKey{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		ORCID:     a.ORCID,
	}
}

// MatchKey returns the literature dedup key. The second return value is
// false when neither a DOI nor an ISBN is present: such entries are never
// matched and always create a new record, which means resubmitting them
// duplicates rows. Inherited behavior, kept as is.
func (l *Literature) MatchKey() (LiteratureKey, bool) {
	if l.DOI == nil && l.ISBN == nil {
		return LiteratureKey{}, false
	}

	return LiteratureKey{DOI: l.DOI, ISBN: l.ISBN}, true
}

// MatchKey returns the level's dedup key. Call Normalize (and ApplyAliases,
// when aliases are configured) first.
func (l *Level) MatchKey() LevelKey {
	return LevelKey{
		Method:               l.Method,
		Basis:                l.Basis,
		AuxiliaryBasis:       l.AuxiliaryBasis,
		Dispersion:           l.Dispersion,
		Grid:                 l.Grid,
		Solvent:              l.Solvent,
		SolvationMethod:      l.SolvationMethod,
		SolvationDescription: l.SolvationDescription,
		LevelArguments:       l.LevelArguments,
	}
}

// MatchKey returns the bot's dedup key. Call Normalize first.
func (b *Bot) MatchKey() BotKey {
	return BotKey{
		Name:      b.Name,
		Version:   b.Version,
		URL:       b.URL,
		GitHash:   b.GitHash,
		GitBranch: b.GitBranch,
	}
}

// MatchKey returns the ESS descriptor's dedup key. Call Normalize first.
func (e *ESS) MatchKey() ESSKey {
	return ESSKey{
		Name:     e.Name,
		Version:  e.Version,
		Revision: e.Revision,
		URL:      e.URL,
	}
}

// ==============================================================================
// Fingerprints
// ==============================================================================

// Fingerprint returns a stable digest of the key, safe for logs and audit
// event keys where raw field values are not.
func (k AuthorKey) Fingerprint() string {
	return normalize.Fingerprint("author", k.FirstName, k.LastName, normalize.Deref(k.ORCID))
}

// Fingerprint returns a stable digest of the key.
func (k LiteratureKey) Fingerprint() string {
	return normalize.Fingerprint("literature", normalize.Deref(k.DOI), normalize.Deref(k.ISBN))
}

// Fingerprint returns a stable digest of the key.
func (k LevelKey) Fingerprint() string {
	return normalize.Fingerprint(
		"level",
		k.Method,
		normalize.Deref(k.Basis),
		normalize.Deref(k.AuxiliaryBasis),
		normalize.Deref(k.Dispersion),
		normalize.Deref(k.Grid),
		normalize.Deref(k.Solvent),
		normalize.Deref(k.SolvationMethod),
		normalize.Deref(k.SolvationDescription),
		normalize.Deref(k.LevelArguments),
	)
}

// Fingerprint returns a stable digest of the key.
func (k BotKey) Fingerprint() string {
	return normalize.Fingerprint(
		"bot",
		k.Name,
		k.Version,
		k.URL,
		normalize.Deref(k.GitHash),
		normalize.Deref(k.GitBranch),
	)
}

// Fingerprint returns a stable digest of the key.
func (k ESSKey) Fingerprint() string {
	return normalize.Fingerprint(
		"ess",
		k.Name,
		normalize.Deref(k.Version),
		normalize.Deref(k.Revision),
		k.URL,
	)
}

// Fingerprint returns a stable digest identifying the species by label.
// Species are never merged, so the label is the whole identity.
func (s *Species) Fingerprint() string {
	return normalize.Fingerprint("species", s.Label)
}
