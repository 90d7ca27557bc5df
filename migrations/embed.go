package main

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
)

// MigrationSet wraps a filesystem of SQL migration files and validates it
// before any state-changing operation: strict filenames, up/down pairing, a
// gapless sequence starting at 001, and checksum integrity across repeated
// validations of the same set.
type MigrationSet struct {
	fs        fs.FS
	checksums map[string]string // filename -> SHA256, filled on first Validate
}

// MigrationFile is the parsed form of one migration filename.
type MigrationFile struct {
	Sequence  int
	Name      string
	Direction string // "up" or "down"
	Filename  string
}

//go:embed *.sql
var embeddedMigrations embed.FS

// Migration filenames follow 001_short_name.up.sql / 001_short_name.down.sql.
var migrationFilenameRegex = regexp.MustCompile(`^(\d{3})_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)

// NewMigrationSet wraps the given filesystem. Passing nil selects the SQL
// files embedded in this binary, which is the zero-config deployment path.
func NewMigrationSet(filesystem fs.FS) *MigrationSet {
	if filesystem == nil {
		filesystem = embeddedMigrations
	}

	return &MigrationSet{
		fs:        filesystem,
		checksums: make(map[string]string),
	}
}

// FS returns the underlying migration filesystem, suitable as a source for
// golang-migrate's iofs driver.
func (s *MigrationSet) FS() fs.FS {
	return s.fs
}

// List returns the migration filenames in apply order. Files that do not
// match the strict naming standard are ignored so stray files cannot be
// applied by accident.
func (s *MigrationSet) List() ([]string, error) {
	entries, err := fs.ReadDir(s.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if migrationFilenameRegex.MatchString(entry.Name()) {
			files = append(files, entry.Name())
		}
	}

	// Lexicographic order equals apply order with 3-digit prefixes.
	sort.Strings(files)

	return files, nil
}

// Content returns the raw SQL of one migration file.
func (s *MigrationSet) Content(filename string) ([]byte, error) {
	return fs.ReadFile(s.fs, filename)
}

// Validate performs the full pre-flight check of the migration set.
//
// Steps:
//  1. The set must contain at least one valid migration file.
//  2. Every filename must parse against the naming standard.
//  3. Every up migration must have a down migration and vice versa.
//  4. Sequence numbers must start at 001 with no gaps.
//  5. If checksums were recorded by an earlier Validate, file contents must
//     still match them.
func (s *MigrationSet) Validate() error {
	files, err := s.List()
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no embedded migration files found")
	}

	parsed := make([]*MigrationFile, 0, len(files))

	for _, filename := range files {
		migration, err := parseMigrationFilename(filename)
		if err != nil {
			return fmt.Errorf("filename validation failed for %s: %w", filename, err)
		}

		parsed = append(parsed, migration)
	}

	if err := validatePairing(parsed); err != nil {
		return err
	}

	if err := validateSequence(parsed); err != nil {
		return err
	}

	if len(s.checksums) > 0 {
		if err := s.validateChecksums(files); err != nil {
			return err
		}
	}

	// Record checksums so later validations detect tampering.
	for _, filename := range files {
		content, err := s.Content(filename)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		s.checksums[filename] = checksum(content)
	}

	return nil
}

// MaxSequence returns the highest sequence number in the set, or zero when
// the set is empty or unreadable.
func (s *MigrationSet) MaxSequence() int {
	files, err := s.List()
	if err != nil {
		return 0
	}

	maxSequence := 0

	for _, filename := range files {
		if migration, err := parseMigrationFilename(filename); err == nil {
			if migration.Sequence > maxSequence {
				maxSequence = migration.Sequence
			}
		}
	}

	return maxSequence
}

// parseMigrationFilename splits a migration filename into its components.
func parseMigrationFilename(filename string) (*MigrationFile, error) {
	matches := migrationFilenameRegex.FindStringSubmatch(filename)
	if len(matches) != 4 {
		return nil, fmt.Errorf(
			"invalid migration filename format: %s (expected: 001_name.up.sql or 001_name.down.sql)",
			filename,
		)
	}

	sequence, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid sequence number in filename %s: %w", filename, err)
	}

	return &MigrationFile{
		Sequence:  sequence,
		Name:      matches[2],
		Direction: matches[3],
		Filename:  filename,
	}, nil
}

// validatePairing ensures that every up migration has a corresponding down
// migration and vice versa.
func validatePairing(migrations []*MigrationFile) error {
	directions := make(map[string]map[string]bool) // 001_name -> direction set

	for _, migration := range migrations {
		key := fmt.Sprintf("%03d_%s", migration.Sequence, migration.Name)
		if directions[key] == nil {
			directions[key] = make(map[string]bool)
		}

		directions[key][migration.Direction] = true
	}

	for key, seen := range directions {
		if !seen["up"] {
			return fmt.Errorf("orphaned down migration: missing up migration for %s", key)
		}

		if !seen["down"] {
			return fmt.Errorf("orphaned up migration: missing down migration for %s", key)
		}
	}

	return nil
}

// validateSequence ensures sequence numbers start at 001 and have no gaps.
func validateSequence(migrations []*MigrationFile) error {
	seen := make(map[int]bool)
	for _, migration := range migrations {
		seen[migration.Sequence] = true
	}

	if len(seen) == 0 {
		return nil
	}

	sequences := make([]int, 0, len(seen))
	for sequence := range seen {
		sequences = append(sequences, sequence)
	}

	sort.Ints(sequences)

	if sequences[0] != 1 {
		return fmt.Errorf(
			"migration sequence should start with 001, but found %03d",
			sequences[0],
		)
	}

	for i := 1; i < len(sequences); i++ {
		if sequences[i] != sequences[i-1]+1 {
			return fmt.Errorf(
				"gap in migration sequence: expected %03d, found %03d",
				sequences[i-1]+1,
				sequences[i],
			)
		}
	}

	return nil
}

// validateChecksums verifies that migration files have not changed since the
// checksums were recorded.
func (s *MigrationSet) validateChecksums(files []string) error {
	for _, filename := range files {
		content, err := s.Content(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s for checksum validation: %w", filename, err)
		}

		if stored, exists := s.checksums[filename]; exists && stored != checksum(content) {
			return fmt.Errorf("checksum mismatch for %s: file has been modified", filename)
		}
	}

	return nil
}

func checksum(content []byte) string {
	hash := sha256.Sum256(content)

	return fmt.Sprintf("%x", hash)
}
