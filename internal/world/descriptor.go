package world

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Descriptor is the on-disk world format:
//
//	name: lab
//	lines:
//	  - [10, 10, 10, -10]
//	circles:
//	  - [-7, -7, 1]
type Descriptor struct {
	Name    string      `yaml:"name"`
	Lines   [][]float64 `yaml:"lines"`
	Circles [][]float64 `yaml:"circles"`
}

// Parse decodes a YAML descriptor and builds the world it describes.
func Parse(data []byte) (*World, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("world: decode descriptor: %w", err)
	}
	return d.Build()
}

func (d Descriptor) Build() (*World, error) {
	var l Layout
	for i, v := range d.Lines {
		if len(v) != 4 {
			return nil, fmt.Errorf("%w: line %d has %d values, want 4", ErrMalformedGeometry, i, len(v))
		}
		l.Lines = append(l.Lines, [4]float64{v[0], v[1], v[2], v[3]})
	}
	for i, v := range d.Circles {
		if len(v) != 3 {
			return nil, fmt.Errorf("%w: circle %d has %d values, want 3", ErrMalformedGeometry, i, len(v))
		}
		l.Circles = append(l.Circles, [3]float64{v[0], v[1], v[2]})
	}
	return l.Build(d.Name)
}

// DescriptorOf converts a world back into its descriptor form.
func DescriptorOf(w *World) Descriptor {
	d := Descriptor{Name: w.name}
	for _, l := range w.lines {
		d.Lines = append(d.Lines, []float64{l.A.X, l.A.Y, l.B.X, l.B.Y})
	}
	for _, c := range w.circles {
		d.Circles = append(d.Circles, []float64{c.Center.X, c.Center.Y, c.Radius})
	}
	return d
}

// Load reads a descriptor file. A descriptor without a name takes the file's
// base name.
func Load(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownWorld, path)
		}
		return nil, err
	}
	w, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if w.name == "" {
		w.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return w, nil
}

// Save writes the world as a YAML descriptor.
func Save(path string, w *World) error {
	data, err := yaml.Marshal(DescriptorOf(w))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve maps a world source to a World: the empty string selects the
// default map, built-in names select built-ins, anything else is read as a
// descriptor path.
func Resolve(source string) (*World, error) {
	if source == "" {
		return Default(), nil
	}
	if w, ok := Builtin(source); ok {
		return w, nil
	}
	return Load(source)
}
