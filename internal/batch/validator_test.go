// Package batch submission validation tests.
package batch

import (
	"errors"
	"testing"
	"time"
)

func intPtr(n int) *int {
	return &n
}

// validArticle returns a literature payload that passes validation.
func validArticle() Literature {
	return Literature{
		Type:      LiteratureTypeArticle,
		Title:     "Direct Kinetics Measurements of Vinoxy Radical Reactions",
		Year:      2019,
		Authors:   []Author{{FirstName: "Jane", LastName: "Doe"}},
		Journal:   strPtr("J. Phys. Chem. A"),
		Volume:    intPtr(123),
		Issue:     intPtr(4),
		PageStart: intPtr(100),
		PageEnd:   intPtr(112),
		DOI:       strPtr("10.1021/acs.jpca.8b10223"),
	}
}

// validBook returns a book payload that passes validation.
func validBook() Literature {
	return Literature{
		Type:             LiteratureTypeBook,
		Title:            "Chemical Kinetics and Dynamics",
		Year:             2005,
		Authors:          []Author{{FirstName: "Jane", LastName: "Doe"}},
		Publisher:        strPtr("Wiley"),
		Editors:          strPtr("R. Smith"),
		PublicationPlace: strPtr("New York"),
		ISBN:             strPtr("978-3-16-148410-0"),
	}
}

// validThesis returns a thesis payload that passes validation.
func validThesis() Literature {
	return Literature{
		Type:    LiteratureTypeThesis,
		Title:   "Automated Thermochemistry of Reactive Intermediates",
		Year:    2021,
		Authors: []Author{{FirstName: "Jane", LastName: "Doe"}},
		Advisor: strPtr("Prof. A. Mentor"),
	}
}

// validSpecies returns a species payload that passes validation.
func validSpecies() Species {
	return Species{
		Label:        "vinoxy",
		SMILES:       strPtr("C=C[O]"),
		Charge:       0,
		Multiplicity: 2,
		Coordinates: Coordinates{
			Symbols:  []string{"C", "C", "O"},
			Isotopes: []int{12, 12, 16},
			Coords:   [][]float64{{0, 0, 0}, {1.34, 0, 0}, {2.02, 1.11, 0}},
		},
		ExternalSymmetry: 1,
		PointGroup:       "cs",
		IsWell:           true,
		ElectronicEnergy: -152.352,
		E0:               -152.329,
		Frequencies:      []float64{432.1, 958.4, 1502.7},
	}
}

// ==============================================================================
// Unit Tests: Batch-Level Validation
// ==============================================================================

func TestValidateBatch_Nil(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	err := validator.ValidateBatch(nil)
	if !errors.Is(err, ErrNilBatch) {
		t.Errorf("ValidateBatch(nil) should return ErrNilBatch, got %v", err)
	}
}

func TestValidateBatch_Empty(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	if err := validator.ValidateBatch(&Batch{}); err != nil {
		t.Errorf("ValidateBatch() should accept an empty batch, got %v", err)
	}
}

func TestValidateBatch_MissingConnectionID(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	batch := &Batch{
		Authors: []AuthorItem{
			{ConnectionID: "  ", Author: Author{FirstName: "Jane", LastName: "Doe"}},
		},
	}

	err := validator.ValidateBatch(batch)
	if !errors.Is(err, ErrMissingConnectionID) {
		t.Errorf("ValidateBatch() should return ErrMissingConnectionID, got %v", err)
	}
}

func TestValidateBatch_ReportsStageAndConnectionID(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	batch := &Batch{
		Authors: []AuthorItem{
			{ConnectionID: "a1", Author: Author{FirstName: "Jane", LastName: "Doe"}},
		},
		Bots: []BotItem{
			{ConnectionID: "bot_1", Bot: Bot{Name: "ARC", Version: "", URL: "https://example.com"}},
		},
	}

	err := validator.ValidateBatch(batch)

	var batchErr *Error
	if !errors.As(err, &batchErr) {
		t.Fatalf("ValidateBatch() should return a *Error, got %T", err)
	}

	if batchErr.Stage != StageBots {
		t.Errorf("Stage = %s, want %s", batchErr.Stage, StageBots)
	}

	if batchErr.ConnectionID != "bot_1" {
		t.Errorf("ConnectionID = %q, want %q", batchErr.ConnectionID, "bot_1")
	}

	if !errors.Is(err, ErrMissingBotVersion) {
		t.Errorf("error should wrap ErrMissingBotVersion, got %v", err)
	}
}

// ==============================================================================
// Unit Tests: Authors
// ==============================================================================

func TestValidateAuthor_Valid(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	author := Author{FirstName: "Jane", LastName: "Doe", ORCID: strPtr("0000-0002-1825-0097")}

	if err := validator.ValidateAuthor(&author); err != nil {
		t.Errorf("ValidateAuthor() failed for valid author: %v", err)
	}
}

func TestValidateAuthor_MissingFirstName(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	author := Author{FirstName: " ", LastName: "Doe"}

	err := validator.ValidateAuthor(&author)
	if !errors.Is(err, ErrMissingFirstName) {
		t.Errorf("ValidateAuthor() should return ErrMissingFirstName, got %v", err)
	}
}

func TestValidateAuthor_MissingLastName(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	author := Author{FirstName: "Jane"}

	err := validator.ValidateAuthor(&author)
	if !errors.Is(err, ErrMissingLastName) {
		t.Errorf("ValidateAuthor() should return ErrMissingLastName, got %v", err)
	}
}

// ==============================================================================
// Unit Tests: Literature
// ==============================================================================

func TestValidateLiterature_ValidPayloads(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name string
		lit  Literature
	}{
		{name: "article", lit: validArticle()},
		{name: "book", lit: validBook()},
		{name: "thesis", lit: validThesis()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validator.ValidateLiterature(&tt.lit); err != nil {
				t.Errorf("ValidateLiterature() failed for valid %s: %v", tt.name, err)
			}
		})
	}
}

func TestValidateLiterature_InvalidType(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	lit := validArticle()
	lit.Type = "preprint"

	err := validator.ValidateLiterature(&lit)
	if !errors.Is(err, ErrInvalidLiteratureType) {
		t.Errorf("ValidateLiterature() should return ErrInvalidLiteratureType, got %v", err)
	}
}

func TestValidateLiterature_MissingTitle(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	lit := validArticle()
	lit.Title = "   "

	err := validator.ValidateLiterature(&lit)
	if !errors.Is(err, ErrMissingTitle) {
		t.Errorf("ValidateLiterature() should return ErrMissingTitle, got %v", err)
	}
}

func TestValidateLiterature_UnderscoreInTitle(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	lit := validArticle()
	lit.Title = "kinetics_of_vinoxy"

	err := validator.ValidateLiterature(&lit)
	if !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("ValidateLiterature() should return ErrInvalidTitle, got %v", err)
	}
}

func TestValidateLiterature_YearBounds(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name    string
		year    int
		wantErr bool
	}{
		{name: "too early", year: 1499, wantErr: true},
		{name: "earliest allowed", year: 1500, wantErr: false},
		{name: "current year", year: time.Now().Year(), wantErr: false},
		{name: "future", year: time.Now().Year() + 1, wantErr: true},
		{name: "zero", year: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit := validArticle()
			lit.Year = tt.year

			err := validator.ValidateLiterature(&lit)

			if tt.wantErr && !errors.Is(err, ErrInvalidYear) {
				t.Errorf("year %d should return ErrInvalidYear, got %v", tt.year, err)
			}

			if !tt.wantErr && err != nil {
				t.Errorf("year %d should be valid, got %v", tt.year, err)
			}
		})
	}
}

func TestValidateLiterature_MissingAuthors(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	lit := validArticle()
	lit.Authors = nil

	err := validator.ValidateLiterature(&lit)
	if !errors.Is(err, ErrMissingAuthors) {
		t.Errorf("ValidateLiterature() should return ErrMissingAuthors, got %v", err)
	}
}

func TestValidateLiterature_InvalidInlineAuthor(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	lit := validArticle()
	lit.Authors = []Author{{FirstName: "Jane"}}

	err := validator.ValidateLiterature(&lit)
	if !errors.Is(err, ErrMissingLastName) {
		t.Errorf("ValidateLiterature() should surface the inline author failure, got %v", err)
	}
}

func TestValidateLiterature_ArticleRequiredFields(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name  string
		strip func(*Literature)
	}{
		{name: "journal", strip: func(l *Literature) { l.Journal = nil }},
		{name: "volume", strip: func(l *Literature) { l.Volume = nil }},
		{name: "issue", strip: func(l *Literature) { l.Issue = nil }},
		{name: "page_start", strip: func(l *Literature) { l.PageStart = nil }},
		{name: "page_end", strip: func(l *Literature) { l.PageEnd = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit := validArticle()
			tt.strip(&lit)

			err := validator.ValidateLiterature(&lit)
			if !errors.Is(err, ErrMissingLiteratureField) {
				t.Errorf("article without %s should return ErrMissingLiteratureField, got %v", tt.name, err)
			}
		})
	}
}

func TestValidateLiterature_BookRequiredFields(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name  string
		strip func(*Literature)
	}{
		{name: "publisher", strip: func(l *Literature) { l.Publisher = nil }},
		{name: "editors", strip: func(l *Literature) { l.Editors = nil }},
		{name: "publication_place", strip: func(l *Literature) { l.PublicationPlace = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit := validBook()
			tt.strip(&lit)

			err := validator.ValidateLiterature(&lit)
			if !errors.Is(err, ErrMissingLiteratureField) {
				t.Errorf("book without %s should return ErrMissingLiteratureField, got %v", tt.name, err)
			}
		})
	}
}

func TestValidateLiterature_ThesisRequiresAdvisor(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	lit := validThesis()
	lit.Advisor = strPtr("  ")

	err := validator.ValidateLiterature(&lit)
	if !errors.Is(err, ErrMissingLiteratureField) {
		t.Errorf("thesis without advisor should return ErrMissingLiteratureField, got %v", err)
	}
}

func TestValidateLiterature_InvalidDOI(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	lit := validArticle()
	lit.DOI = strPtr("doi.org/10.1021/acs.jpca.8b10223")

	err := validator.ValidateLiterature(&lit)
	if !errors.Is(err, ErrInvalidDOI) {
		t.Errorf("ValidateLiterature() should return ErrInvalidDOI, got %v", err)
	}
}

func TestValidateLiterature_InvalidISBN(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	lit := validBook()
	lit.ISBN = strPtr("ISBN 978-3-16-148410-0")

	err := validator.ValidateLiterature(&lit)
	if !errors.Is(err, ErrInvalidISBN) {
		t.Errorf("ValidateLiterature() should return ErrInvalidISBN, got %v", err)
	}
}

func TestValidateLiterature_InvalidPageRange(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	lit := validArticle()
	lit.PageStart = intPtr(112)
	lit.PageEnd = intPtr(100)

	err := validator.ValidateLiterature(&lit)
	if !errors.Is(err, ErrInvalidPageRange) {
		t.Errorf("ValidateLiterature() should return ErrInvalidPageRange, got %v", err)
	}
}

// ==============================================================================
// Unit Tests: Levels
// ==============================================================================

func TestValidateLevel_Valid(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	level := Level{
		Method:          "wb97x-d",
		Basis:           strPtr("def2-tzvp"),
		Solvent:         strPtr("water"),
		SolvationMethod: strPtr("smd"),
	}

	if err := validator.ValidateLevel(&level); err != nil {
		t.Errorf("ValidateLevel() failed for valid level: %v", err)
	}
}

func TestValidateLevel_MissingMethod(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	level := Level{Basis: strPtr("def2-tzvp")}

	err := validator.ValidateLevel(&level)
	if !errors.Is(err, ErrMissingMethod) {
		t.Errorf("ValidateLevel() should return ErrMissingMethod, got %v", err)
	}
}

func TestValidateLevel_SlashRejected(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	// "method/basis" combos must be split into their fields, not passed
	// through in the slash notation.
	tests := []struct {
		name  string
		level Level
	}{
		{name: "method", level: Level{Method: "b3lyp/6-31g"}},
		{name: "basis", level: Level{Method: "b3lyp", Basis: strPtr("6-31g/aug")}},
		{name: "dispersion", level: Level{Method: "b3lyp", Dispersion: strPtr("gd3bj/x")}},
		{name: "solvent", level: Level{Method: "b3lyp", Solvent: strPtr("water/meoh"), SolvationMethod: strPtr("smd")}},
		{name: "solvation_method", level: Level{Method: "b3lyp", Solvent: strPtr("water"), SolvationMethod: strPtr("smd/x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateLevel(&tt.level)
			if !errors.Is(err, ErrInvalidLevelField) {
				t.Errorf("slash in %s should return ErrInvalidLevelField, got %v", tt.name, err)
			}
		})
	}
}

func TestValidateLevel_SolvationMethodRequiresSolvent(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	level := Level{Method: "b3lyp", SolvationMethod: strPtr("smd")}

	err := validator.ValidateLevel(&level)
	if !errors.Is(err, ErrMissingSolvent) {
		t.Errorf("ValidateLevel() should return ErrMissingSolvent, got %v", err)
	}
}

func TestValidateLevel_SolventAloneAllowed(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	level := Level{Method: "b3lyp", Solvent: strPtr("water")}

	if err := validator.ValidateLevel(&level); err != nil {
		t.Errorf("ValidateLevel() should allow a solvent without a solvation method: %v", err)
	}
}

// ==============================================================================
// Unit Tests: Bots
// ==============================================================================

func TestValidateBot_Valid(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	bot := Bot{
		Name:      "ARC",
		Version:   "1.1.0",
		URL:       "https://github.com/ReactionMechanismGenerator/ARC",
		GitHash:   strPtr("0123456789abcdef0123456789abcdef01234567"),
		GitBranch: strPtr("main"),
	}

	if err := validator.ValidateBot(&bot); err != nil {
		t.Errorf("ValidateBot() failed for valid bot: %v", err)
	}
}

func TestValidateBot_MissingFields(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name    string
		bot     Bot
		wantErr error
	}{
		{name: "name", bot: Bot{Version: "1.0", URL: "https://x"}, wantErr: ErrMissingBotName},
		{name: "version", bot: Bot{Name: "ARC", URL: "https://x"}, wantErr: ErrMissingBotVersion},
		{name: "url", bot: Bot{Name: "ARC", Version: "1.0"}, wantErr: ErrMissingBotURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateBot(&tt.bot)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateBot() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBot_InvalidGitHash(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name string
		hash string
	}{
		{name: "too short", hash: "abc123"},
		{name: "39 characters", hash: "0123456789abcdef0123456789abcdef0123456"},
		{name: "non-hex", hash: "0123456789abcdef0123456789abcdef0123456z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot := Bot{Name: "ARC", Version: "1.0", URL: "https://x", GitHash: &tt.hash}

			err := validator.ValidateBot(&bot)
			if !errors.Is(err, ErrInvalidGitHash) {
				t.Errorf("ValidateBot() should return ErrInvalidGitHash for %q, got %v", tt.hash, err)
			}
		})
	}
}

// ==============================================================================
// Unit Tests: ESS
// ==============================================================================

func TestValidateESS_Valid(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	ess := ESS{Name: "Gaussian", Version: strPtr("16"), Revision: strPtr("C.01"), URL: "https://gaussian.com"}

	if err := validator.ValidateESS(&ess); err != nil {
		t.Errorf("ValidateESS() failed for valid descriptor: %v", err)
	}
}

func TestValidateESS_MissingFields(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name    string
		ess     ESS
		wantErr error
	}{
		{name: "name", ess: ESS{URL: "https://gaussian.com"}, wantErr: ErrMissingESSName},
		{name: "url", ess: ESS{Name: "Gaussian"}, wantErr: ErrMissingESSURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateESS(&tt.ess)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateESS() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ==============================================================================
// Unit Tests: Energy Corrections
// ==============================================================================

func TestValidateEnCorr_Valid(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	enCorr := EnCorr{
		SupportedElements: []string{"H", "C", "O"},
		EnergyUnit:        "hartree",
		AEC:               map[string]float64{"H": -0.499459, "C": -37.786204, "O": -74.995458},
		BAC:               map[string]float64{"C-H": 0.25, "C=O": -0.12},
	}

	if err := validator.ValidateEnCorr(&enCorr); err != nil {
		t.Errorf("ValidateEnCorr() failed for valid correction set: %v", err)
	}
}

func TestValidateEnCorr_MissingEnergyUnit(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	enCorr := EnCorr{SupportedElements: []string{"H"}}

	err := validator.ValidateEnCorr(&enCorr)
	if !errors.Is(err, ErrMissingEnergyUnit) {
		t.Errorf("ValidateEnCorr() should return ErrMissingEnergyUnit, got %v", err)
	}
}

func TestValidateEnCorr_MissingSupportedElements(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	enCorr := EnCorr{EnergyUnit: "hartree"}

	err := validator.ValidateEnCorr(&enCorr)
	if !errors.Is(err, ErrMissingSupportedElements) {
		t.Errorf("ValidateEnCorr() should return ErrMissingSupportedElements, got %v", err)
	}
}

func TestValidateEnCorr_UnsupportedElement(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	enCorr := EnCorr{
		SupportedElements: []string{"H", "C"},
		EnergyUnit:        "hartree",
		AEC:               map[string]float64{"N": -54.52},
	}

	err := validator.ValidateEnCorr(&enCorr)
	if !errors.Is(err, ErrUnsupportedElement) {
		t.Errorf("ValidateEnCorr() should return ErrUnsupportedElement, got %v", err)
	}
}

func TestValidateEnCorr_StoichiometryMismatch(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	enCorr := EnCorr{
		SupportedElements: []string{"H", "C", "O"},
		EnergyUnit:        "kJ/mol",
		IsodesmicReactions: []IsodesmicReaction{
			{
				Reactants:     []string{"[CH2]C=O", "C"},
				Products:      []string{"CC=O", "[CH3]"},
				Stoichiometry: []int{1, 1, 1},
				DHrxn298:      -16.809,
			},
		},
	}

	err := validator.ValidateEnCorr(&enCorr)
	if !errors.Is(err, ErrInvalidStoichiometry) {
		t.Errorf("ValidateEnCorr() should return ErrInvalidStoichiometry, got %v", err)
	}
}

func TestValidateEnCorr_ValidIsodesmicReaction(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	enCorr := EnCorr{
		SupportedElements: []string{"H", "C", "O"},
		EnergyUnit:        "kJ/mol",
		IsodesmicReactions: []IsodesmicReaction{
			{
				Reactants:     []string{"[CH2]C=O", "C"},
				Products:      []string{"CC=O", "[CH3]"},
				Stoichiometry: []int{1, 1, 1, 1},
				DHrxn298:      -16.809,
			},
		},
	}

	if err := validator.ValidateEnCorr(&enCorr); err != nil {
		t.Errorf("ValidateEnCorr() failed for balanced reaction: %v", err)
	}
}

// ==============================================================================
// Unit Tests: Frequency Scaling Factors
// ==============================================================================

func TestValidateFreqScale_Valid(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	freqScale := FreqScale{Factor: 0.988, Source: "Truhlar group database"}

	if err := validator.ValidateFreqScale(&freqScale); err != nil {
		t.Errorf("ValidateFreqScale() failed for valid factor: %v", err)
	}
}

func TestValidateFreqScale_FactorBounds(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name    string
		factor  float64
		wantErr bool
	}{
		{name: "zero", factor: 0, wantErr: true},
		{name: "negative", factor: -0.5, wantErr: true},
		{name: "two", factor: 2, wantErr: true},
		{name: "above two", factor: 2.5, wantErr: true},
		{name: "just below two", factor: 1.999, wantErr: false},
		{name: "typical", factor: 0.967, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freqScale := FreqScale{Factor: tt.factor, Source: "test"}

			err := validator.ValidateFreqScale(&freqScale)

			if tt.wantErr && !errors.Is(err, ErrInvalidFactor) {
				t.Errorf("factor %g should return ErrInvalidFactor, got %v", tt.factor, err)
			}

			if !tt.wantErr && err != nil {
				t.Errorf("factor %g should be valid, got %v", tt.factor, err)
			}
		})
	}
}

func TestValidateFreqScale_MissingSource(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	freqScale := FreqScale{Factor: 0.99}

	err := validator.ValidateFreqScale(&freqScale)
	if !errors.Is(err, ErrMissingSource) {
		t.Errorf("ValidateFreqScale() should return ErrMissingSource, got %v", err)
	}
}

// ==============================================================================
// Unit Tests: Species
// ==============================================================================

func TestValidateSpecies_Valid(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	species := validSpecies()

	if err := validator.ValidateSpecies(&species); err != nil {
		t.Errorf("ValidateSpecies() failed for valid species: %v", err)
	}
}

func TestValidateSpecies_MissingLabel(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	species := validSpecies()
	species.Label = "  "

	err := validator.ValidateSpecies(&species)
	if !errors.Is(err, ErrMissingLabel) {
		t.Errorf("ValidateSpecies() should return ErrMissingLabel, got %v", err)
	}
}

func TestValidateSpecies_ChargeBounds(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		charge  int
		wantErr bool
	}{
		{charge: -11, wantErr: true},
		{charge: -10, wantErr: false},
		{charge: 0, wantErr: false},
		{charge: 10, wantErr: false},
		{charge: 11, wantErr: true},
	}

	for _, tt := range tests {
		species := validSpecies()
		species.Charge = tt.charge

		err := validator.ValidateSpecies(&species)

		if tt.wantErr && !errors.Is(err, ErrInvalidCharge) {
			t.Errorf("charge %d should return ErrInvalidCharge, got %v", tt.charge, err)
		}

		if !tt.wantErr && err != nil {
			t.Errorf("charge %d should be valid, got %v", tt.charge, err)
		}
	}
}

func TestValidateSpecies_MultiplicityBounds(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		multiplicity int
		wantErr      bool
	}{
		{multiplicity: -1, wantErr: true},
		{multiplicity: 0, wantErr: false},
		{multiplicity: 10, wantErr: false},
		{multiplicity: 11, wantErr: true},
	}

	for _, tt := range tests {
		species := validSpecies()
		species.Multiplicity = tt.multiplicity

		err := validator.ValidateSpecies(&species)

		if tt.wantErr && !errors.Is(err, ErrInvalidMultiplicity) {
			t.Errorf("multiplicity %d should return ErrInvalidMultiplicity, got %v", tt.multiplicity, err)
		}

		if !tt.wantErr && err != nil {
			t.Errorf("multiplicity %d should be valid, got %v", tt.multiplicity, err)
		}
	}
}

func TestValidateSpecies_InvalidExternalSymmetry(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	species := validSpecies()
	species.ExternalSymmetry = 0

	err := validator.ValidateSpecies(&species)
	if !errors.Is(err, ErrInvalidExternalSymmetry) {
		t.Errorf("ValidateSpecies() should return ErrInvalidExternalSymmetry, got %v", err)
	}
}

func TestValidateSpecies_PointGroupBounds(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name       string
		pointGroup string
		wantErr    bool
	}{
		{name: "empty", pointGroup: "", wantErr: true},
		{name: "blank", pointGroup: "   ", wantErr: true},
		{name: "c1", pointGroup: "c1", wantErr: false},
		{name: "six characters", pointGroup: "d6h...", wantErr: false},
		{name: "seven characters", pointGroup: "coov-ex", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			species := validSpecies()
			species.PointGroup = tt.pointGroup

			err := validator.ValidateSpecies(&species)

			if tt.wantErr && !errors.Is(err, ErrInvalidPointGroup) {
				t.Errorf("point group %q should return ErrInvalidPointGroup, got %v", tt.pointGroup, err)
			}

			if !tt.wantErr && err != nil {
				t.Errorf("point group %q should be valid, got %v", tt.pointGroup, err)
			}
		})
	}
}

func TestValidateSpecies_InvalidCoordinates(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	validator := NewValidator()

	tests := []struct {
		name   string
		mutate func(*Species)
	}{
		{
			name:   "no atoms",
			mutate: func(s *Species) { s.Coordinates = Coordinates{} },
		},
		{
			name:   "isotope count mismatch",
			mutate: func(s *Species) { s.Coordinates.Isotopes = []int{12} },
		},
		{
			name:   "position count mismatch",
			mutate: func(s *Species) { s.Coordinates.Coords = s.Coordinates.Coords[:2] },
		},
		{
			name:   "non-triplet position",
			mutate: func(s *Species) { s.Coordinates.Coords[1] = []float64{1.0, 2.0} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			species := validSpecies()
			tt.mutate(&species)

			err := validator.ValidateSpecies(&species)
			if !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("ValidateSpecies() should return ErrInvalidCoordinates, got %v", err)
			}
		})
	}
}
