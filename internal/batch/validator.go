// Package batch payload validation.
package batch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Sentinel errors for validation failures.
var (
	ErrNilBatch                 = errors.New("batch cannot be nil")
	ErrMissingConnectionID      = errors.New("connection_id is required")
	ErrMissingFirstName         = errors.New("first_name is required")
	ErrMissingLastName          = errors.New("last_name is required")
	ErrInvalidLiteratureType    = errors.New("type must be one of: article, book, thesis")
	ErrMissingTitle             = errors.New("title is required")
	ErrInvalidTitle             = errors.New("title cannot contain underscores")
	ErrInvalidYear              = errors.New("year must be between 1500 and the current year")
	ErrMissingAuthors           = errors.New("literature requires at least one author")
	ErrMissingLiteratureField   = errors.New("required literature field is missing")
	ErrInvalidDOI               = errors.New("doi must start with 10.")
	ErrInvalidISBN              = errors.New("isbn must contain only digits and hyphens")
	ErrInvalidPageRange         = errors.New("page_end must not precede page_start")
	ErrMissingMethod            = errors.New("method is required")
	ErrInvalidLevelField        = errors.New("level field cannot contain a slash")
	ErrMissingSolvent           = errors.New("a solvation method requires a solvent")
	ErrMissingBotName           = errors.New("bot name is required")
	ErrMissingBotVersion        = errors.New("bot version is required")
	ErrMissingBotURL            = errors.New("bot url is required")
	ErrInvalidGitHash           = errors.New("git_hash must be a 40-character commit hash")
	ErrMissingESSName           = errors.New("ess name is required")
	ErrMissingESSURL            = errors.New("ess url is required")
	ErrMissingEnergyUnit        = errors.New("energy_unit is required")
	ErrMissingSupportedElements = errors.New("supported_elements cannot be empty")
	ErrUnsupportedElement       = errors.New("correction references an element outside supported_elements")
	ErrInvalidStoichiometry     = errors.New("stoichiometry must carry one coefficient per reactant and product")
	ErrInvalidFactor            = errors.New("factor must be strictly between 0 and 2")
	ErrMissingSource            = errors.New("source is required")
	ErrMissingLabel             = errors.New("label is required")
	ErrInvalidCharge            = errors.New("charge must be between -10 and 10")
	ErrInvalidMultiplicity      = errors.New("multiplicity must be between 0 and 10")
	ErrInvalidExternalSymmetry  = errors.New("external_symmetry must be at least 1")
	ErrInvalidPointGroup        = errors.New("point_group must be 1 to 6 characters")
	ErrInvalidCoordinates       = errors.New("coordinates are inconsistent")
)

// gitHashPattern matches a full 40-character hex commit hash.
var gitHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// isbnPattern matches ISBNs as digits and hyphens.
var isbnPattern = regexp.MustCompile(`^[0-9-]+$`)

// Validator performs structural and field-level validation of a submitted
// batch before the pipeline runs. Reference fields are not checked here:
// whether a connection id resolves is a pipeline concern, reported as
// ErrUnresolvedReference or ErrUnknownConnectionID with stage context.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateBatch validates every item of the batch and returns the first
// failure as an *Error naming the stage and connection id. A batch with no
// items at all is valid and resolves to an empty result.
func (v *Validator) ValidateBatch(b *Batch) error {
	if b == nil {
		return ErrNilBatch
	}

	for i := range b.Authors {
		item := &b.Authors[i]
		if err := itemError(StageAuthors, item.ConnectionID, v.ValidateAuthor(&item.Author)); err != nil {
			return err
		}
	}

	for i := range b.Literature {
		item := &b.Literature[i]
		if err := itemError(StageLiterature, item.ConnectionID, v.ValidateLiterature(&item.Literature)); err != nil {
			return err
		}
	}

	for i := range b.Levels {
		item := &b.Levels[i]
		if err := itemError(StageLevels, item.ConnectionID, v.ValidateLevel(&item.Level)); err != nil {
			return err
		}
	}

	for i := range b.Bots {
		item := &b.Bots[i]
		if err := itemError(StageBots, item.ConnectionID, v.ValidateBot(&item.Bot)); err != nil {
			return err
		}
	}

	for i := range b.ESS {
		item := &b.ESS[i]
		if err := itemError(StageESS, item.ConnectionID, v.ValidateESS(&item.ESS)); err != nil {
			return err
		}
	}

	for i := range b.EnCorrs {
		item := &b.EnCorrs[i]
		if err := itemError(StageEnCorrs, item.ConnectionID, v.ValidateEnCorr(&item.EnCorr)); err != nil {
			return err
		}
	}

	for i := range b.FreqScales {
		item := &b.FreqScales[i]
		if err := itemError(StageFreqScales, item.ConnectionID, v.ValidateFreqScale(&item.FreqScale)); err != nil {
			return err
		}
	}

	for i := range b.Species {
		item := &b.Species[i]
		if err := itemError(StageSpecies, item.ConnectionID, v.ValidateSpecies(&item.Species)); err != nil {
			return err
		}
	}

	return nil
}

// itemError attaches stage and connection id context to an item validation
// failure. A blank connection id is itself a failure, checked first.
func itemError(stage Stage, connectionID string, err error) error {
	if strings.TrimSpace(connectionID) == "" {
		return &Error{Stage: stage, ConnectionID: connectionID, Err: ErrMissingConnectionID}
	}

	if err != nil {
		return &Error{Stage: stage, ConnectionID: connectionID, Err: err}
	}

	return nil
}

// ValidateAuthor validates an author payload, standalone or inline.
func (v *Validator) ValidateAuthor(a *Author) error {
	if strings.TrimSpace(a.FirstName) == "" {
		return ErrMissingFirstName
	}

	if strings.TrimSpace(a.LastName) == "" {
		return ErrMissingLastName
	}

	return nil
}

// ValidateLiterature validates a literature payload, including its
// type-specific required fields and inline authors.
//
// Required per type:
//   - article: journal, volume, issue, page_start, page_end
//   - book: publisher, editors, publication_place
//   - thesis: advisor
func (v *Validator) ValidateLiterature(l *Literature) error {
	if !l.Type.IsValid() {
		return fmt.Errorf("%w: got %q", ErrInvalidLiteratureType, l.Type)
	}

	if strings.TrimSpace(l.Title) == "" {
		return ErrMissingTitle
	}

	if strings.Contains(l.Title, "_") {
		return ErrInvalidTitle
	}

	if l.Year < 1500 || l.Year > time.Now().Year() {
		return fmt.Errorf("%w: got %d", ErrInvalidYear, l.Year)
	}

	if len(l.Authors) == 0 {
		return ErrMissingAuthors
	}

	for i := range l.Authors {
		if err := v.ValidateAuthor(&l.Authors[i]); err != nil {
			return fmt.Errorf("author %d: %w", i+1, err)
		}
	}

	if err := v.validateLiteratureType(l); err != nil {
		return err
	}

	if l.DOI != nil && !strings.HasPrefix(strings.TrimSpace(*l.DOI), "10.") {
		return fmt.Errorf("%w: got %q", ErrInvalidDOI, *l.DOI)
	}

	if l.ISBN != nil && !isbnPattern.MatchString(strings.TrimSpace(*l.ISBN)) {
		return fmt.Errorf("%w: got %q", ErrInvalidISBN, *l.ISBN)
	}

	if l.PageStart != nil && l.PageEnd != nil && *l.PageEnd < *l.PageStart {
		return fmt.Errorf("%w: got %d to %d", ErrInvalidPageRange, *l.PageStart, *l.PageEnd)
	}

	return nil
}

// validateLiteratureType enforces the fields each literature type requires.
func (v *Validator) validateLiteratureType(l *Literature) error {
	missing := func(field string) error {
		return fmt.Errorf("%w: %s is required for a %s", ErrMissingLiteratureField, field, l.Type)
	}

	switch l.Type {
	case LiteratureTypeArticle:
		if emptyPtr(l.Journal) {
			return missing("journal")
		}

		if l.Volume == nil {
			return missing("volume")
		}

		if l.Issue == nil {
			return missing("issue")
		}

		if l.PageStart == nil {
			return missing("page_start")
		}

		if l.PageEnd == nil {
			return missing("page_end")
		}
	case LiteratureTypeBook:
		if emptyPtr(l.Publisher) {
			return missing("publisher")
		}

		if emptyPtr(l.Editors) {
			return missing("editors")
		}

		if emptyPtr(l.PublicationPlace) {
			return missing("publication_place")
		}
	case LiteratureTypeThesis:
		if emptyPtr(l.Advisor) {
			return missing("advisor")
		}
	}

	return nil
}

// ValidateLevel validates a level of theory payload. Slashes are rejected in
// single-name fields because the slash separates method from basis in the
// conventional "method/basis" notation.
func (v *Validator) ValidateLevel(l *Level) error {
	if strings.TrimSpace(l.Method) == "" {
		return ErrMissingMethod
	}

	noSlash := []struct {
		field string
		value *string
	}{
		{"method", &l.Method},
		{"basis", l.Basis},
		{"dispersion", l.Dispersion},
		{"solvent", l.Solvent},
		{"solvation_method", l.SolvationMethod},
	}

	for _, f := range noSlash {
		if f.value != nil && strings.Contains(*f.value, "/") {
			return fmt.Errorf("%w: %s %q", ErrInvalidLevelField, f.field, *f.value)
		}
	}

	if !emptyPtr(l.SolvationMethod) && emptyPtr(l.Solvent) {
		return ErrMissingSolvent
	}

	return nil
}

// ValidateBot validates a bot payload.
func (v *Validator) ValidateBot(b *Bot) error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrMissingBotName
	}

	if strings.TrimSpace(b.Version) == "" {
		return ErrMissingBotVersion
	}

	if strings.TrimSpace(b.URL) == "" {
		return ErrMissingBotURL
	}

	if b.GitHash != nil && !gitHashPattern.MatchString(strings.TrimSpace(*b.GitHash)) {
		return fmt.Errorf("%w: got %q", ErrInvalidGitHash, *b.GitHash)
	}

	return nil
}

// ValidateESS validates an electronic structure software payload.
func (v *Validator) ValidateESS(e *ESS) error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrMissingESSName
	}

	if strings.TrimSpace(e.URL) == "" {
		return ErrMissingESSURL
	}

	return nil
}

// ValidateEnCorr validates an energy correction payload. Atom energy
// corrections may only reference elements the set declares support for.
func (v *Validator) ValidateEnCorr(e *EnCorr) error {
	if strings.TrimSpace(e.EnergyUnit) == "" {
		return ErrMissingEnergyUnit
	}

	if len(e.SupportedElements) == 0 {
		return ErrMissingSupportedElements
	}

	supported := make(map[string]struct{}, len(e.SupportedElements))
	for _, element := range e.SupportedElements {
		supported[strings.TrimSpace(element)] = struct{}{}
	}

	for element := range e.AEC {
		if _, ok := supported[element]; !ok {
			return fmt.Errorf("%w: %q", ErrUnsupportedElement, element)
		}
	}

	for i, reaction := range e.IsodesmicReactions {
		if len(reaction.Stoichiometry) != len(reaction.Reactants)+len(reaction.Products) {
			return fmt.Errorf(
				"%w: reaction %d has %d coefficients for %d participants",
				ErrInvalidStoichiometry, i+1,
				len(reaction.Stoichiometry), len(reaction.Reactants)+len(reaction.Products),
			)
		}
	}

	return nil
}

// ValidateFreqScale validates a frequency scaling factor payload.
func (v *Validator) ValidateFreqScale(f *FreqScale) error {
	if f.Factor <= 0 || f.Factor >= 2 {
		return fmt.Errorf("%w: got %g", ErrInvalidFactor, f.Factor)
	}

	if strings.TrimSpace(f.Source) == "" {
		return ErrMissingSource
	}

	return nil
}

// ValidateSpecies validates a species payload. Geometry consistency (one
// symbol, one isotope, and one xyz triplet per atom) is checked here so the
// pipeline and storage can trust the shape.
func (v *Validator) ValidateSpecies(s *Species) error {
	if strings.TrimSpace(s.Label) == "" {
		return ErrMissingLabel
	}

	if s.Charge < -10 || s.Charge > 10 {
		return fmt.Errorf("%w: got %d", ErrInvalidCharge, s.Charge)
	}

	if s.Multiplicity < 0 || s.Multiplicity > 10 {
		return fmt.Errorf("%w: got %d", ErrInvalidMultiplicity, s.Multiplicity)
	}

	if s.ExternalSymmetry < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidExternalSymmetry, s.ExternalSymmetry)
	}

	if trimmed := strings.TrimSpace(s.PointGroup); trimmed == "" || len(trimmed) > 6 {
		return fmt.Errorf("%w: got %q", ErrInvalidPointGroup, s.PointGroup)
	}

	return v.validateCoordinates(&s.Coordinates)
}

// validateCoordinates checks the parallel geometry slices for consistency.
func (v *Validator) validateCoordinates(c *Coordinates) error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("%w: no atoms", ErrInvalidCoordinates)
	}

	if len(c.Isotopes) != len(c.Symbols) {
		return fmt.Errorf(
			"%w: %d isotopes for %d atoms",
			ErrInvalidCoordinates, len(c.Isotopes), len(c.Symbols),
		)
	}

	if len(c.Coords) != len(c.Symbols) {
		return fmt.Errorf(
			"%w: %d positions for %d atoms",
			ErrInvalidCoordinates, len(c.Coords), len(c.Symbols),
		)
	}

	for i, xyz := range c.Coords {
		if len(xyz) != 3 {
			return fmt.Errorf("%w: atom %d has %d coordinates, want 3", ErrInvalidCoordinates, i+1, len(xyz))
		}
	}

	return nil
}

// emptyPtr reports whether an optional string field is absent or blank.
func emptyPtr(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
