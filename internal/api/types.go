// Package api provides HTTP API server implementation for the KinDB service.
package api

import (
	"time"
)

type (
	// BatchRequest represents the payload of POST /api/v1/batch: up to eight
	// named lists of records that reference each other through connection ids.
	// All lists are optional; an omitted list means no records of that kind.
	//
	// This is separate from the domain model (batch.Batch) to decouple
	// the API contract from internal domain types.
	BatchRequest struct {
		Authors    []AuthorRequest     `json:"authors,omitempty"`
		Literature []LiteratureRequest `json:"literature,omitempty"`
		Levels     []LevelRequest      `json:"levels,omitempty"`
		Bots       []BotRequest        `json:"bots,omitempty"`
		ESS        []ESSRequest        `json:"ess,omitempty"`
		EnCorrs    []EnCorrRequest     `json:"encorr,omitempty"`
		FreqScales []FreqScaleRequest  `json:"freq_scales,omitempty"` //nolint:tagliatelle
		Species    []SpeciesRequest    `json:"species,omitempty"`
	}

	// AuthorPayload carries the author fields shared by standalone author
	// entries and the inline author lists of literature entries. Inline
	// authors carry no connection id.
	AuthorPayload struct {
		FirstName string  `json:"first_name"` //nolint:tagliatelle
		LastName  string  `json:"last_name"`  //nolint:tagliatelle
		ORCID     *string `json:"orcid,omitempty"`
	}

	// AuthorRequest is a standalone author entry in a batch payload.
	AuthorRequest struct {
		ConnectionID string `json:"connection_id"` //nolint:tagliatelle

		AuthorPayload
	}

	// LiteratureRequest is a literature entry in a batch payload. Authors
	// are supplied inline rather than via connection ids.
	LiteratureRequest struct {
		ConnectionID     string          `json:"connection_id"` //nolint:tagliatelle
		Type             string          `json:"type"`
		Title            string          `json:"title"`
		Year             int             `json:"year"`
		Authors          []AuthorPayload `json:"authors,omitempty"`
		Journal          *string         `json:"journal,omitempty"`
		Publisher        *string         `json:"publisher,omitempty"`
		Volume           *int            `json:"volume,omitempty"`
		Issue            *int            `json:"issue,omitempty"`
		PageStart        *int            `json:"page_start,omitempty"` //nolint:tagliatelle
		PageEnd          *int            `json:"page_end,omitempty"`   //nolint:tagliatelle
		Editors          *string         `json:"editors,omitempty"`
		Edition          *string         `json:"edition,omitempty"`
		ChapterTitle     *string         `json:"chapter_title,omitempty"`     //nolint:tagliatelle
		PublicationPlace *string         `json:"publication_place,omitempty"` //nolint:tagliatelle
		Advisor          *string         `json:"advisor,omitempty"`
		DOI              *string         `json:"doi,omitempty"`
		ISBN             *string         `json:"isbn,omitempty"`
		URL              *string         `json:"url,omitempty"`
	}

	// LevelRequest is a level of theory entry in a batch payload.
	LevelRequest struct {
		ConnectionID         string  `json:"connection_id"` //nolint:tagliatelle
		Method               string  `json:"method"`
		Basis                *string `json:"basis,omitempty"`
		AuxiliaryBasis       *string `json:"auxiliary_basis,omitempty"` //nolint:tagliatelle
		Dispersion           *string `json:"dispersion,omitempty"`
		Grid                 *string `json:"grid,omitempty"`
		Solvent              *string `json:"solvent,omitempty"`
		SolvationMethod      *string `json:"solvation_method,omitempty"`      //nolint:tagliatelle
		SolvationDescription *string `json:"solvation_description,omitempty"` //nolint:tagliatelle
		LevelArguments       *string `json:"level_arguments,omitempty"`       //nolint:tagliatelle
	}

	// BotRequest is a bot entry in a batch payload.
	BotRequest struct {
		ConnectionID string  `json:"connection_id"` //nolint:tagliatelle
		Name         string  `json:"name"`
		Version      string  `json:"version"`
		URL          string  `json:"url"`
		GitHash      *string `json:"git_hash,omitempty"`   //nolint:tagliatelle
		GitBranch    *string `json:"git_branch,omitempty"` //nolint:tagliatelle
	}

	// ESSRequest is an electronic structure software entry in a batch payload.
	ESSRequest struct {
		ConnectionID string  `json:"connection_id"` //nolint:tagliatelle
		Name         string  `json:"name"`
		Version      *string `json:"version,omitempty"`
		Revision     *string `json:"revision,omitempty"`
		URL          string  `json:"url"`
	}

	// IsodesmicReactionRequest is one reaction of an isodesmic correction
	// scheme. The DHrxn298 key is uppercase on the wire.
	IsodesmicReactionRequest struct {
		Reactants     []string `json:"reactants"`
		Products      []string `json:"products"`
		Stoichiometry []int    `json:"stoichiometry"`
		DHrxn298      float64  `json:"DHrxn298"` //nolint:tagliatelle
	}

	// EnCorrRequest is an energy correction entry in a batch payload. The
	// primary level reference is required.
	EnCorrRequest struct {
		ConnectionID               string                     `json:"connection_id"`      //nolint:tagliatelle
		SupportedElements          []string                   `json:"supported_elements"` //nolint:tagliatelle
		EnergyUnit                 string                     `json:"energy_unit"`        //nolint:tagliatelle
		AEC                        map[string]float64         `json:"aec,omitempty"`
		BAC                        map[string]float64         `json:"bac,omitempty"`
		IsodesmicReactions         []IsodesmicReactionRequest `json:"isodesmic_reactions,omitempty"`          //nolint:tagliatelle
		PrimaryLevelConnectionID   *string                    `json:"primary_level_connection_id,omitempty"`  //nolint:tagliatelle
		IsodesmicLevelConnectionID *string                    `json:"isodesmic_level_connection_id,omitempty"` //nolint:tagliatelle
	}

	// FreqScaleRequest is a frequency scaling factor entry in a batch
	// payload. The level reference is required.
	FreqScaleRequest struct {
		ConnectionID      string  `json:"connection_id"` //nolint:tagliatelle
		Factor            float64 `json:"factor"`
		Source            string  `json:"source"`
		LevelConnectionID *string `json:"level_connection_id,omitempty"` //nolint:tagliatelle
	}

	// CoordinatesPayload is a cartesian geometry: parallel lists of atom
	// symbols, isotope mass numbers, and xyz positions.
	CoordinatesPayload struct {
		Symbols  []string    `json:"symbols"`
		Isotopes []int       `json:"isotopes"`
		Coords   [][]float64 `json:"coords"`
	}

	// LevelConnectionsRequest names the level-of-theory references of a
	// species by job type. The sp reference is mandatory.
	LevelConnectionsRequest struct {
		Opt  *string `json:"opt,omitempty"`
		Freq *string `json:"freq,omitempty"`
		Scan *string `json:"scan,omitempty"`
		IRC  *string `json:"irc,omitempty"`
		SP   string  `json:"sp"`
	}

	// ESSConnectionsRequest names the software references of a species by
	// job type. All slots are optional.
	ESSConnectionsRequest struct {
		Opt  *string `json:"opt,omitempty"`
		Freq *string `json:"freq,omitempty"`
		Scan *string `json:"scan,omitempty"`
		IRC  *string `json:"irc,omitempty"`
		SP   *string `json:"sp,omitempty"`
	}

	// SpeciesRequest is a species entry in a batch payload together with
	// its references to other entries of the same request.
	SpeciesRequest struct {
		ConnectionID               string             `json:"connection_id"` //nolint:tagliatelle
		Label                      string             `json:"label"`
		SMILES                     *string            `json:"smiles,omitempty"`
		InChI                      *string            `json:"inchi,omitempty"`
		Charge                     int                `json:"charge"`
		Multiplicity               int                `json:"multiplicity"`
		Coordinates                CoordinatesPayload `json:"coordinates"`
		ExternalSymmetry           int                `json:"external_symmetry"` //nolint:tagliatelle
		PointGroup                 string             `json:"point_group"`       //nolint:tagliatelle
		ConformationMethod         *string            `json:"conformation_method,omitempty"` //nolint:tagliatelle
		IsWell                     bool               `json:"is_well"`           //nolint:tagliatelle
		ElectronicEnergy           float64            `json:"electronic_energy"` //nolint:tagliatelle
		E0                         float64            `json:"E0"`                //nolint:tagliatelle
		Frequencies                []float64          `json:"frequencies,omitempty"`
		ScaledProjectedFrequencies []float64          `json:"scaled_projected_frequencies,omitempty"` //nolint:tagliatelle
		NormalDisplacementModes    [][][]float64      `json:"normal_displacement_modes,omitempty"`    //nolint:tagliatelle
		Hessian                    [][]float64        `json:"hessian,omitempty"`

		LevelConnections LevelConnectionsRequest `json:"level_connections"`         //nolint:tagliatelle
		ESSConnections   ESSConnectionsRequest   `json:"ess_connections,omitempty"` //nolint:tagliatelle

		LiteratureConnectionID *string `json:"literature_connection_id,omitempty"` //nolint:tagliatelle
		BotConnectionID        *string `json:"bot_connection_id,omitempty"`        //nolint:tagliatelle
		EnCorrConnectionID     *string `json:"encorr_connection_id,omitempty"`     //nolint:tagliatelle
		FreqScaleConnectionID  *string `json:"freq_scale_connection_id,omitempty"` //nolint:tagliatelle
	}
)

type (
	// BatchResponse represents the success response for POST /api/v1/batch.
	// Species ids are listed in submission order; ids of all other record
	// kinds are internal and not reported.
	BatchResponse struct {
		Detail  string           `json:"detail"`
		Species []CreatedSpecies `json:"species"`
	}

	// CreatedSpecies reports the persistent id assigned to one uploaded
	// species.
	CreatedSpecies struct {
		ID int64 `json:"id"`
	}

	// SpeciesResponse represents the response for GET /api/v1/species/{id}.
	// Contains the full species record with all resolved reference ids.
	SpeciesResponse struct {
		ID                         int64              `json:"id"`
		Label                      string             `json:"label"`
		SMILES                     *string            `json:"smiles,omitempty"`
		InChI                      *string            `json:"inchi,omitempty"`
		Charge                     int                `json:"charge"`
		Multiplicity               int                `json:"multiplicity"`
		Coordinates                CoordinatesPayload `json:"coordinates"`
		ExternalSymmetry           int                `json:"external_symmetry"` //nolint:tagliatelle
		PointGroup                 string             `json:"point_group"`       //nolint:tagliatelle
		ConformationMethod         *string            `json:"conformation_method,omitempty"` //nolint:tagliatelle
		IsWell                     bool               `json:"is_well"`           //nolint:tagliatelle
		ElectronicEnergy           float64            `json:"electronic_energy"` //nolint:tagliatelle
		E0                         float64            `json:"E0"`                //nolint:tagliatelle
		Frequencies                []float64          `json:"frequencies,omitempty"`
		ScaledProjectedFrequencies []float64          `json:"scaled_projected_frequencies,omitempty"` //nolint:tagliatelle
		NormalDisplacementModes    [][][]float64      `json:"normal_displacement_modes,omitempty"`    //nolint:tagliatelle
		Hessian                    [][]float64        `json:"hessian,omitempty"`

		OptLevelID  *int64 `json:"opt_level_id,omitempty"`  //nolint:tagliatelle
		FreqLevelID *int64 `json:"freq_level_id,omitempty"` //nolint:tagliatelle
		ScanLevelID *int64 `json:"scan_level_id,omitempty"` //nolint:tagliatelle
		IRCLevelID  *int64 `json:"irc_level_id,omitempty"`  //nolint:tagliatelle
		SPLevelID   int64  `json:"sp_level_id"`             //nolint:tagliatelle

		OptESSID  *int64 `json:"opt_ess_id,omitempty"`  //nolint:tagliatelle
		FreqESSID *int64 `json:"freq_ess_id,omitempty"` //nolint:tagliatelle
		ScanESSID *int64 `json:"scan_ess_id,omitempty"` //nolint:tagliatelle
		IRCESSID  *int64 `json:"irc_ess_id,omitempty"`  //nolint:tagliatelle
		SPESSID   *int64 `json:"sp_ess_id,omitempty"`   //nolint:tagliatelle

		LiteratureID *int64 `json:"literature_id,omitempty"` //nolint:tagliatelle
		BotID        *int64 `json:"bot_id,omitempty"`        //nolint:tagliatelle
		EnCorrID     *int64 `json:"encorr_id,omitempty"`     //nolint:tagliatelle
		FreqScaleID  *int64 `json:"freq_scale_id,omitempty"` //nolint:tagliatelle

		CreatedAt time.Time `json:"created_at"` //nolint:tagliatelle
		UpdatedAt time.Time `json:"updated_at"` //nolint:tagliatelle
	}

	// AliasSuggestionsResponse represents the response for
	// GET /api/v1/levels/alias-suggestions.
	AliasSuggestionsResponse struct {
		Suggestions []AliasSuggestionResponse `json:"suggestions"`
	}

	// AliasSuggestionResponse represents one suggested alias mapping derived
	// from the spelling variants of stored level methods and bases.
	AliasSuggestionResponse struct {
		Field         string `json:"field"`
		Alias         string `json:"alias"`
		Canonical     string `json:"canonical"`
		ResolvesCount int    `json:"resolves_count"` //nolint:tagliatelle
	}
)
