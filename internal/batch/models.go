// Package batch implements the batch ingestion resolver.
//
// One client call submits a graph of interrelated records (authors,
// literature, levels of theory, bots, electronic structure software
// descriptors, energy corrections, frequency scaling factors, species) that
// reference each other through caller-chosen, request-local connection ids.
// The pipeline deduplicates each record against stored equivalents, assigns
// persistent ids, rewrites connection-id references to persistent ids in a
// fixed dependency order, and commits or discards the whole graph atomically.
package batch

type (
	// PersistentID is the identifier assigned by storage once a record is
	// created or matched to a stored equivalent. Connection ids never leave
	// the request; persistent ids are what reference columns hold.
	PersistentID int64

	// Stage identifies one phase of the ingestion pipeline. Stages run in
	// the fixed order returned by Stages, so a record can only reference
	// kinds processed in an earlier stage.
	Stage string
)

const (
	// StageAuthors resolves standalone author entries.
	StageAuthors Stage = "authors"

	// StageLiterature resolves literature entries and their inline authors.
	StageLiterature Stage = "literature"

	// StageLevels resolves levels of theory.
	StageLevels Stage = "levels"

	// StageBots resolves bot (software tool) entries.
	StageBots Stage = "bots"

	// StageESS resolves electronic structure software descriptors.
	StageESS Stage = "ess"

	// StageEnCorrs creates energy correction sets.
	StageEnCorrs Stage = "encorr"

	// StageFreqScales creates frequency scaling factors.
	StageFreqScales Stage = "freq_scales"

	// StageSpecies creates species, the top-level records of a batch.
	StageSpecies Stage = "species"
)

// Stages returns the pipeline stages in processing order. Later stages may
// reference connection ids registered by earlier stages, never the reverse.
func Stages() []Stage {
	return []Stage{
		StageAuthors,
		StageLiterature,
		StageLevels,
		StageBots,
		StageESS,
		StageEnCorrs,
		StageFreqScales,
		StageSpecies,
	}
}

// String returns the string representation of a Stage.
func (s Stage) String() string {
	return string(s)
}

// ==============================================================================
// Authors
// ==============================================================================

type (
	// Author represents a person credited on literature or submissions.
	//
	// Authors are deduplicated on (first_name, last_name, orcid). The
	// schema carries no uniqueness constraint for authors, so dedup is
	// best effort and concurrent submissions can still produce duplicates.
	Author struct {
		// FirstName is the author's given name.
		FirstName string

		// LastName is the author's family name.
		LastName string

		// ORCID is the author's ORCID identifier (optional).
		// Example: "0000-0001-6377-2161"
		ORCID *string
	}

	// AuthorItem is an Author submitted in a batch, carrying the
	// request-local connection id other items use to reference it.
	AuthorItem struct {
		// ConnectionID is the caller-chosen id, unique within the batch.
		ConnectionID string

		Author
	}
)

// ==============================================================================
// Literature
// ==============================================================================

type (
	// LiteratureType classifies a literature reference.
	LiteratureType string

	// Literature represents a publication: an article, book, or thesis.
	//
	// Authors are supplied inline rather than via connection ids and are
	// resolved as nested sub-entities during the literature stage. This is
	// an intentional asymmetry versus every other reference in the batch.
	//
	// Deduplication compares (doi, isbn) and only runs when at least one of
	// the two is present; entries carrying neither are always created anew.
	Literature struct {
		// Type is the literature type: article, book, or thesis.
		Type LiteratureType

		// Title is the article, book, or thesis title.
		Title string

		// Year is the publication year.
		Year int

		// Authors are the inline author payloads for this entry.
		Authors []Author

		// Journal is the journal name (articles).
		Journal *string

		// Publisher is the publisher name (books, theses).
		Publisher *string

		// Volume is the journal volume (articles).
		Volume *int

		// Issue is the journal issue (articles).
		Issue *int

		// PageStart is the first page (articles).
		PageStart *int

		// PageEnd is the last page (articles).
		PageEnd *int

		// Editors are the editor names (books).
		Editors *string

		// Edition is the book edition.
		Edition *string

		// ChapterTitle is the cited chapter title (books).
		ChapterTitle *string

		// PublicationPlace is where the book was published.
		PublicationPlace *string

		// Advisor is the dissertation advisor (theses).
		Advisor *string

		// DOI is the digital object identifier. Part of the dedup key.
		DOI *string

		// ISBN is the book identifier. Part of the dedup key.
		ISBN *string

		// URL is the web address of the source.
		URL *string
	}

	// LiteratureItem is a Literature entry submitted in a batch.
	LiteratureItem struct {
		// ConnectionID is the caller-chosen id, unique within the batch.
		ConnectionID string

		Literature
	}
)

const (
	// LiteratureTypeArticle is a journal article.
	LiteratureTypeArticle LiteratureType = "article"

	// LiteratureTypeBook is a book or book chapter.
	LiteratureTypeBook LiteratureType = "book"

	// LiteratureTypeThesis is a dissertation.
	LiteratureTypeThesis LiteratureType = "thesis"
)

// IsValid checks if the LiteratureType is a supported value.
func (t LiteratureType) IsValid() bool {
	switch t {
	case LiteratureTypeArticle, LiteratureTypeBook, LiteratureTypeThesis:
		return true
	default:
		return false
	}
}

// String returns the string representation of a LiteratureType.
func (t LiteratureType) String() string {
	return string(t)
}

// ==============================================================================
// Levels of Theory
// ==============================================================================

type (
	// Level represents a level of theory: the method, basis set, and
	// associated settings of an electronic structure calculation.
	//
	// All nine descriptive fields form the dedup key. The schema carries no
	// uniqueness constraint for levels, so dedup is best effort.
	Level struct {
		// Method is the computational method, e.g. "cbs-qb3" or "b3lyp".
		Method string

		// Basis is the basis set, e.g. "6-31g(d,p)".
		Basis *string

		// AuxiliaryBasis is the auxiliary basis set.
		AuxiliaryBasis *string

		// Dispersion is the dispersion correction if not built into the
		// method, e.g. "gd3bj".
		Dispersion *string

		// Grid describes the DFT grid, if applicable.
		Grid *string

		// Solvent is the considered solvent, e.g. "water".
		Solvent *string

		// SolvationMethod is the solvation model, e.g. "smd".
		SolvationMethod *string

		// SolvationDescription describes a non-standard solvation scheme.
		SolvationDescription *string

		// LevelArguments carries additional level arguments, e.g. "tight-pno".
		LevelArguments *string
	}

	// LevelItem is a Level submitted in a batch.
	LevelItem struct {
		// ConnectionID is the caller-chosen id, unique within the batch.
		ConnectionID string

		Level
	}
)

// ==============================================================================
// Bots
// ==============================================================================

type (
	// Bot represents an automated software tool that generated data,
	// e.g. ARC 1.0.
	//
	// Bots are deduplicated on all five fields and are the one kind whose
	// dedup is also race safe: storage enforces UNIQUE (name, version), so
	// concurrent equivalent inserts surface as conflicts and resolve to the
	// winning row.
	Bot struct {
		// Name is the tool name, e.g. "ARC".
		Name string

		// Version is the tool version, e.g. "1.1.0".
		Version string

		// URL is the tool's official website.
		URL string

		// GitHash is the 40-character commit hash of the exact code
		// revision (optional).
		GitHash *string

		// GitBranch is the git branch name (optional).
		GitBranch *string
	}

	// BotItem is a Bot submitted in a batch.
	BotItem struct {
		// ConnectionID is the caller-chosen id, unique within the batch.
		ConnectionID string

		Bot
	}
)

// ==============================================================================
// Electronic Structure Software
// ==============================================================================

type (
	// ESS describes an electronic structure software package a calculation
	// was run with, e.g. Gaussian 16 revision A.
	//
	// The dedup key is (name, version, revision, url), but storage only
	// enforces UNIQUE (name). The mismatch is inherited behavior: two
	// concurrent submissions of a same-named ESS with different versions
	// are not race safe.
	ESS struct {
		// Name is the software name, e.g. "Gaussian".
		Name string

		// Version is the software version, e.g. "16" (optional).
		Version *string

		// Revision is the software revision, e.g. "C.01" (optional).
		Revision *string

		// URL is the software's official website.
		URL string
	}

	// ESSItem is an ESS descriptor submitted in a batch.
	ESSItem struct {
		// ConnectionID is the caller-chosen id, unique within the batch.
		ConnectionID string

		ESS
	}
)

// ==============================================================================
// Energy Corrections
// ==============================================================================

type (
	// EnCorr represents an energy correction set: atom energy corrections,
	// bond additivity corrections, or isodesmic reactions used to correct
	// electronic energies computed at its primary level of theory.
	//
	// Energy corrections are never deduplicated; every submission creates a
	// new record.
	EnCorr struct {
		// SupportedElements lists the chemical elements the correction
		// covers, e.g. ["H", "C", "N", "O"].
		SupportedElements []string

		// EnergyUnit is the unit of all correction values, e.g. "hartree".
		EnergyUnit string

		// AEC maps element symbols to atom energy corrections.
		AEC map[string]float64

		// BAC maps bond descriptors (e.g. "C-H", "C=O") to bond additivity
		// corrections.
		BAC map[string]float64

		// IsodesmicReactions lists the isodesmic reactions used for the
		// correction, if the isodesmic scheme is used.
		IsodesmicReactions []IsodesmicReaction
	}

	// IsodesmicReaction is one reaction of an isodesmic correction scheme.
	IsodesmicReaction struct {
		// Reactants are reactant identifiers (SMILES).
		Reactants []string

		// Products are product identifiers (SMILES).
		Products []string

		// Stoichiometry lists the coefficients of all reactants followed by
		// all products.
		Stoichiometry []int

		// DHrxn298 is the reaction enthalpy change at 298 K.
		DHrxn298 float64
	}

	// EnCorrItem is an EnCorr submitted in a batch. The primary level
	// reference is required; the isodesmic high level reference is only
	// meaningful for isodesmic schemes.
	EnCorrItem struct {
		// ConnectionID is the caller-chosen id, unique within the batch.
		ConnectionID string

		EnCorr

		// PrimaryLevelConnectionID references the level of theory the
		// correction applies to. Required: a missing reference fails the
		// batch with ErrUnresolvedReference.
		PrimaryLevelConnectionID *string

		// IsodesmicLevelConnectionID references the high level of theory
		// used for isodesmic reactions (optional).
		IsodesmicLevelConnectionID *string
	}

	// EnCorrRecord is an EnCorr with its level references resolved to
	// persistent ids, ready for storage.
	EnCorrRecord struct {
		EnCorr

		// LevelID is the resolved primary level of theory.
		LevelID PersistentID

		// IsodesmicHighLevelID is the resolved isodesmic high level, if any.
		IsodesmicHighLevelID *PersistentID
	}
)

// ==============================================================================
// Frequency Scaling Factors
// ==============================================================================

type (
	// FreqScale represents an empirical frequency scaling factor derived
	// for one level of theory.
	//
	// Scaling factors are never deduplicated; every submission creates a
	// new record.
	FreqScale struct {
		// Factor is the scaling factor, strictly between 0 and 2.
		Factor float64

		// Source names the publication or method the factor derives from.
		Source string
	}

	// FreqScaleItem is a FreqScale submitted in a batch. The level
	// reference is required.
	FreqScaleItem struct {
		// ConnectionID is the caller-chosen id, unique within the batch.
		ConnectionID string

		FreqScale

		// LevelConnectionID references the level of theory the factor was
		// derived for. Required: a missing reference fails the batch with
		// ErrUnresolvedReference.
		LevelConnectionID *string
	}

	// FreqScaleRecord is a FreqScale with its level reference resolved to a
	// persistent id, ready for storage.
	FreqScaleRecord struct {
		FreqScale

		// LevelID is the resolved level of theory.
		LevelID PersistentID
	}
)

// ==============================================================================
// Species
// ==============================================================================

type (
	// Species represents a chemical species: the top-level record of a
	// batch and the only kind whose persistent ids are returned to the
	// caller.
	//
	// Species are never merged. Storage enforces label uniqueness among
	// live rows, and a clashing label is a hard conflict that fails the
	// batch rather than a dedup hit.
	Species struct {
		// Label is the species label, e.g. "CH4". Unique among live rows.
		Label string

		// SMILES is the SMILES descriptor (optional).
		SMILES *string

		// InChI is the InChI descriptor (optional).
		InChI *string

		// Charge is the net electric charge.
		Charge int

		// Multiplicity is the spin multiplicity.
		Multiplicity int

		// Coordinates is the cartesian geometry of the species.
		Coordinates Coordinates

		// ExternalSymmetry is the external symmetry number.
		ExternalSymmetry int

		// PointGroup is the symmetry point group, e.g. "Td".
		PointGroup string

		// ConformationMethod names the method used to determine the
		// conformation (optional).
		ConformationMethod *string

		// IsWell reports whether the species is a well on the potential
		// energy surface.
		IsWell bool

		// ElectronicEnergy is the electronic energy in hartree.
		ElectronicEnergy float64

		// E0 is the zero-point-corrected energy in hartree.
		E0 float64

		// Frequencies are the calculated harmonic frequencies (optional).
		Frequencies []float64

		// ScaledProjectedFrequencies are the scaled, projected frequencies
		// (optional).
		ScaledProjectedFrequencies []float64

		// NormalDisplacementModes are the normal mode displacements,
		// one matrix per frequency (optional).
		NormalDisplacementModes [][][]float64

		// Hessian is the second derivative matrix (optional).
		Hessian [][]float64
	}

	// Coordinates is a cartesian geometry: parallel slices of atom symbols,
	// isotope mass numbers, and xyz positions.
	Coordinates struct {
		// Symbols are the element symbols, one per atom.
		Symbols []string

		// Isotopes are the isotope mass numbers, one per atom.
		Isotopes []int

		// Coords are the xyz positions in Angstrom, one triplet per atom.
		Coords [][]float64
	}

	// LevelConnections names the level-of-theory references of a species by
	// job type. The single-point reference is mandatory; the rest are
	// optional.
	LevelConnections struct {
		// Opt references the geometry optimization level (optional).
		Opt *string

		// Freq references the frequency calculation level (optional).
		Freq *string

		// Scan references the torsion scan level (optional).
		Scan *string

		// IRC references the IRC calculation level (optional).
		IRC *string

		// SP references the single-point energy level. Required: an empty
		// value fails the batch with ErrUnresolvedReference.
		SP string
	}

	// ESSConnections names the electronic structure software references of
	// a species by job type. All slots are optional.
	ESSConnections struct {
		// Opt references the software that ran the optimization.
		Opt *string

		// Freq references the software that ran the frequency calculation.
		Freq *string

		// Scan references the software that ran the torsion scans.
		Scan *string

		// IRC references the software that ran the IRC calculations.
		IRC *string

		// SP references the software that ran the single-point calculation.
		SP *string
	}

	// SpeciesItem is a Species submitted in a batch together with all of
	// its references, each a connection id declared elsewhere in the same
	// request.
	SpeciesItem struct {
		// ConnectionID is the caller-chosen id, unique within the batch.
		ConnectionID string

		Species

		// LevelConnections references levels of theory by job type.
		LevelConnections LevelConnections

		// ESSConnections references software descriptors by job type.
		ESSConnections ESSConnections

		// LiteratureConnectionID references the source publication
		// (optional).
		LiteratureConnectionID *string

		// BotConnectionID references the generating tool (optional).
		BotConnectionID *string

		// EnCorrConnectionID references the applied energy correction set
		// (optional).
		EnCorrConnectionID *string

		// FreqScaleConnectionID references the applied frequency scaling
		// factor (optional).
		FreqScaleConnectionID *string
	}

	// SpeciesRecord is a Species with every reference resolved to a
	// persistent id, ready for storage.
	SpeciesRecord struct {
		Species

		// OptLevelID is the resolved optimization level, if referenced.
		OptLevelID *PersistentID

		// FreqLevelID is the resolved frequency level, if referenced.
		FreqLevelID *PersistentID

		// ScanLevelID is the resolved torsion scan level, if referenced.
		ScanLevelID *PersistentID

		// IRCLevelID is the resolved IRC level, if referenced.
		IRCLevelID *PersistentID

		// SPLevelID is the resolved single-point level. Always set.
		SPLevelID PersistentID

		// OptESSID is the resolved optimization software, if referenced.
		OptESSID *PersistentID

		// FreqESSID is the resolved frequency software, if referenced.
		FreqESSID *PersistentID

		// ScanESSID is the resolved torsion scan software, if referenced.
		ScanESSID *PersistentID

		// IRCESSID is the resolved IRC software, if referenced.
		IRCESSID *PersistentID

		// SPESSID is the resolved single-point software, if referenced.
		SPESSID *PersistentID

		// LiteratureID is the resolved source publication, if referenced.
		LiteratureID *PersistentID

		// BotID is the resolved generating tool, if referenced.
		BotID *PersistentID

		// EnCorrID is the resolved energy correction set, if referenced.
		EnCorrID *PersistentID

		// FreqScaleID is the resolved frequency scaling factor, if
		// referenced.
		FreqScaleID *PersistentID
	}
)

// ==============================================================================
// Batch
// ==============================================================================

type (
	// Batch is one validated client submission: up to eight named lists of
	// items that reference each other through connection ids. List order
	// within a kind does not affect resolvability; stage order does.
	Batch struct {
		// Authors are standalone author entries.
		Authors []AuthorItem

		// Literature are publication entries with inline authors.
		Literature []LiteratureItem

		// Levels are levels of theory.
		Levels []LevelItem

		// Bots are software tool entries.
		Bots []BotItem

		// ESS are electronic structure software descriptors.
		ESS []ESSItem

		// EnCorrs are energy correction sets.
		EnCorrs []EnCorrItem

		// FreqScales are frequency scaling factors.
		FreqScales []FreqScaleItem

		// Species are the top-level species records.
		Species []SpeciesItem
	}

	// Result reports a successful batch upload.
	Result struct {
		// SpeciesIDs are the persistent ids of all created species, in
		// submission order.
		SpeciesIDs []PersistentID
	}
)

// IsEmpty reports whether the batch carries no items at all.
func (b *Batch) IsEmpty() bool {
	return len(b.Authors) == 0 &&
		len(b.Literature) == 0 &&
		len(b.Levels) == 0 &&
		len(b.Bots) == 0 &&
		len(b.ESS) == 0 &&
		len(b.EnCorrs) == 0 &&
		len(b.FreqScales) == 0 &&
		len(b.Species) == 0
}
