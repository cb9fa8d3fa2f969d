// Package level reads, writes and generates puzzle levels.
package level

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultMaxMoves is the move budget of a level without one.
const DefaultMaxMoves = 48

// ColorNames are the color names used by Generate.
const ColorNames = "RGBYOPKMCWADVX"

var (
	// ErrFormat is returned for unsupported file extensions.
	ErrFormat = errors.New("unsupported level format")
	// ErrNotFound is returned by Find.
	ErrNotFound = errors.New("level not found")
)

// Level is a puzzle. Tubes are listed bottom to top.
type Level struct {
	ID       string     `yaml:"id" json:"id"`
	Name     string     `yaml:"name,omitempty" json:"name,omitempty"`
	Tubes    [][]string `yaml:"tubes" json:"tubes"`
	MaxMoves int        `yaml:"max_moves,omitempty" json:"maxMoves,omitempty"`
}

// Moves returns the move budget of l.
func (l *Level) Moves() int {
	if l.MaxMoves <= 0 {
		return DefaultMaxMoves
	}
	return l.MaxMoves
}

// Clone returns a deep copy of l.
func (l *Level) Clone() *Level {
	c := *l
	c.Tubes = make([][]string, len(l.Tubes))
	for i, t := range l.Tubes {
		c.Tubes[i] = append([]string{}, t...)
	}
	return &c
}

type format int

const (
	formatYAML format = iota
	formatJSON
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	case ".json":
		return formatJSON, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrFormat, path)
	}
}

// Load reads a YAML or JSON level file, chosen by extension.
func Load(path string) (*Level, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	l := new(Level)
	switch f {
	case formatYAML:
		err = yaml.Unmarshal(data, l)
	case formatJSON:
		err = json.Unmarshal(data, l)
	}
	if err != nil {
		return nil, fmt.Errorf("parse level %s: %w", path, err)
	}
	if l.ID == "" {
		l.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return l, nil
}

// Save writes l to path as YAML or JSON, chosen by extension.
func (l *Level) Save(path string) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatYAML:
		data, err = yaml.Marshal(l)
	case formatJSON:
		data, err = json.MarshalIndent(l, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode level %s: %w", l.ID, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Generate returns a shuffled level of colors full tubes with capacity units
// of each color, followed by spare empty tubes.
func Generate(rng *rand.Rand, colors, spare, capacity int) (*Level, error) {
	switch {
	case colors < 1 || colors > len(ColorNames):
		return nil, fmt.Errorf("number of colors %d out of range [1, %d]", colors, len(ColorNames))
	case spare < 0:
		return nil, fmt.Errorf("negative number of spare tubes %d", spare)
	case capacity < 1:
		return nil, fmt.Errorf("capacity %d out of range", capacity)
	}

	units := make([]string, 0, colors*capacity)
	for _, c := range ColorNames[:colors] {
		for i := 0; i < capacity; i++ {
			units = append(units, string(c))
		}
	}
	rng.Shuffle(len(units), func(i, j int) { units[i], units[j] = units[j], units[i] })

	tubes := make([][]string, 0, colors+spare)
	for i := 0; i < colors; i++ {
		tubes = append(tubes, units[i*capacity:(i+1)*capacity:(i+1)*capacity])
	}
	for i := 0; i < spare; i++ {
		tubes = append(tubes, []string{})
	}

	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return nil, err
	}
	return &Level{
		ID:       id.String(),
		Name:     fmt.Sprintf("%d colors, %d spare", colors, spare),
		Tubes:    tubes,
		MaxMoves: DefaultMaxMoves,
	}, nil
}

// Builtin returns the built-in levels.
func Builtin() []*Level {
	return []*Level{
		{
			ID:   "classic",
			Name: "Classic",
			Tubes: [][]string{
				{"blue", "cyan", "pink", "red"},
				{"yellow", "pink", "cyan", "blue"},
				{"pink", "green", "red", "cyan"},
				{"blue", "blue", "green", "cyan"},
				{"yellow", "red", "green", "black"},
				{"blue", "cyan", "red", "black"},
				{"yellow"},
				{},
			},
			MaxMoves: DefaultMaxMoves,
		},
		{
			ID:   "simple",
			Name: "Simple",
			Tubes: [][]string{
				{"red", "blue"},
				{"red", "blue"},
				{},
				{},
			},
			MaxMoves: DefaultMaxMoves,
		},
	}
}

// Find returns the level with id.
func Find(levels []*Level, id string) (*Level, error) {
	for _, l := range levels {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
