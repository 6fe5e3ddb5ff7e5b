package sectors

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/heroual/MTSAV/internal/types"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownSector   = errors.New("secteur inconnu")
	ErrSectorExists    = errors.New("le secteur existe déjà")
	ErrEmptySectorName = errors.New("le nom du secteur est vide")
)

// Mapper assigns technical units (ZR) to human-defined sectors. A mapped ZR
// overrides the secteur carried by the ticket itself.
type Mapper struct {
	mu      sync.RWMutex
	mapping map[string]string // ZR -> secteur
	sectors []string          // sorted, unique
}

// NewMapper creates a Mapper seeded with the built-in table
func NewMapper() *Mapper {
	m := &Mapper{}
	m.Replace(DefaultMapping())
	return m
}

// NewEmptyMapper creates a Mapper without any assignment
func NewEmptyMapper() *Mapper {
	return &Mapper{mapping: make(map[string]string)}
}

// Assign maps every given ZR to an existing secteur
func (m *Mapper) Assign(zrs []string, secteur string) error {
	if len(zrs) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasSector(secteur) {
		return fmt.Errorf("%w: %s", ErrUnknownSector, secteur)
	}
	for _, zr := range zrs {
		if zr = strings.TrimSpace(zr); zr != "" {
			m.mapping[zr] = secteur
		}
	}
	return nil
}

// Remove drops the assignment of a ZR
func (m *Mapper) Remove(zr string) {
	m.mu.Lock()
	delete(m.mapping, zr)
	m.mu.Unlock()
}

// CreateSector adds a secteur to the list of assignable sectors
func (m *Mapper) CreateSector(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptySectorName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasSector(name) {
		return fmt.Errorf("%w: %s", ErrSectorExists, name)
	}
	m.addSector(name)
	return nil
}

// DeleteSector removes a secteur and every ZR assigned to it
func (m *Mapper) DeleteSector(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := sort.SearchStrings(m.sectors, name)
	if i == len(m.sectors) || m.sectors[i] != name {
		return fmt.Errorf("%w: %s", ErrUnknownSector, name)
	}
	m.sectors = append(m.sectors[:i], m.sectors[i+1:]...)

	for zr, s := range m.mapping {
		if s == name {
			delete(m.mapping, zr)
		}
	}
	return nil
}

// Replace swaps the whole mapping. Sectors used by the new mapping are
// added to the sector list; created but unused sectors are kept.
func (m *Mapper) Replace(mapping map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mapping = make(map[string]string, len(mapping))
	for zr, secteur := range mapping {
		zr, secteur = strings.TrimSpace(zr), strings.TrimSpace(secteur)
		if zr == "" || secteur == "" {
			continue
		}
		m.mapping[zr] = secteur
		if !m.hasSector(secteur) {
			m.addSector(secteur)
		}
	}
}

// Lookup returns the secteur assigned to a ZR
func (m *Mapper) Lookup(zr string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.mapping[zr]
	return s, ok
}

// Mappings returns a copy of the ZR to secteur table
func (m *Mapper) Mappings() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.mapping))
	for zr, s := range m.mapping {
		out[zr] = s
	}
	return out
}

// Sectors returns the sorted list of sectors
func (m *Mapper) Sectors() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.sectors...)
}

// Unmapped returns the sorted ZRs of allZRs that have no assignment
func (m *Mapper) Unmapped(allZRs []string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool, len(allZRs))
	out := make([]string, 0)
	for _, zr := range allZRs {
		if _, ok := m.mapping[zr]; ok || seen[zr] {
			continue
		}
		seen[zr] = true
		out = append(out, zr)
	}
	sort.Strings(out)
	return out
}

// Apply returns copies of the tickets with mapped sectors substituted
func (m *Mapper) Apply(tickets []types.Ticket) []types.Ticket {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Ticket, len(tickets))
	for i, t := range tickets {
		if s, ok := m.mapping[t.ZR]; ok {
			t.Secteur = s
		}
		out[i] = t
	}
	return out
}

func (m *Mapper) hasSector(name string) bool {
	i := sort.SearchStrings(m.sectors, name)
	return i < len(m.sectors) && m.sectors[i] == name
}

func (m *Mapper) addSector(name string) {
	i := sort.SearchStrings(m.sectors, name)
	m.sectors = append(m.sectors, "")
	copy(m.sectors[i+1:], m.sectors[i:])
	m.sectors[i] = name
}

// mappingFile is the YAML layout: sectors -> list of ZRs
type mappingFile struct {
	Sectors map[string][]string `yaml:"sectors"`
}

// Decode reads a YAML mapping document. Sectors with an empty ZR list are
// kept as assignable sectors.
func Decode(r io.Reader) (*Mapper, error) {
	var doc mappingFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode sector mapping: %w", err)
	}

	m := NewEmptyMapper()
	mapping := make(map[string]string)
	for secteur, zrs := range doc.Sectors {
		secteur = strings.TrimSpace(secteur)
		if secteur == "" {
			return nil, ErrEmptySectorName
		}
		if !m.hasSector(secteur) {
			m.addSector(secteur)
		}
		for _, zr := range zrs {
			if prev, ok := mapping[zr]; ok && prev != secteur {
				return nil, fmt.Errorf("zr %q assigned to both %q and %q", zr, prev, secteur)
			}
			mapping[zr] = secteur
		}
	}

	m.Replace(mapping)
	return m, nil
}

// LoadFile reads a YAML mapping file
func LoadFile(path string) (*Mapper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sector mapping: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// EncodeYAML writes the mapping in the layout read by Decode
func (m *Mapper) EncodeYAML(w io.Writer) error {
	m.mu.RLock()
	doc := mappingFile{Sectors: make(map[string][]string, len(m.sectors))}
	for _, s := range m.sectors {
		doc.Sectors[s] = []string{}
	}
	for zr, s := range m.mapping {
		doc.Sectors[s] = append(doc.Sectors[s], zr)
	}
	m.mu.RUnlock()

	for _, zrs := range doc.Sectors {
		sort.Strings(zrs)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode sector mapping: %w", err)
	}
	return enc.Close()
}
