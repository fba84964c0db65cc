// Package scene reads scene files describing physical objects and registers
// them with a physics engine.
package scene

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"physical/internal/tessellate"
)

// --- file types ---

type SceneFile struct {
	// FirstMeshPrimitive gives the first mesh object Primitive detail unless
	// it names a detail itself.
	FirstMeshPrimitive bool        `json:"firstMeshPrimitive,omitempty" yaml:"firstMeshPrimitive,omitempty"`
	Fields             []string    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Objects            []ObjectDef `json:"objects" yaml:"objects"`
}

type ObjectDef struct {
	Name     string     `json:"name" yaml:"name"`
	Position [3]float32 `json:"position" yaml:"position"`
	// Rotation is Euler angles in degrees, applied X then Y then Z.
	Rotation [3]float32 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale    [3]float32 `json:"scale,omitempty" yaml:"scale,omitempty"`
	Detail   string     `json:"detail,omitempty" yaml:"detail,omitempty"`
	Quality  float32    `json:"quality,omitempty" yaml:"quality,omitempty"`
	Shape    ShapeDef   `json:"shape" yaml:"shape"`
}

// ShapeDef is one of box, sphere, points, mesh, solid or plane.
type ShapeDef struct {
	Type string `json:"type" yaml:"type"`
	// Size is the box extent, centered on the object position.
	Size   [3]float32 `json:"size,omitempty" yaml:"size,omitempty"`
	Radius float32    `json:"radius,omitempty" yaml:"radius,omitempty"`
	// Vertices is a flat xyz buffer for points and meshes, in object space.
	Vertices []float32 `json:"vertices,omitempty" yaml:"vertices,omitempty"`
	Topology []int32   `json:"topology,omitempty" yaml:"topology,omitempty"`
	Normal   [3]float32 `json:"normal,omitempty" yaml:"normal,omitempty"`
	// Solid is tessellated into a mesh when Type is "solid".
	Solid *tessellate.Solid `json:"solid,omitempty" yaml:"solid,omitempty"`
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	}
	return formatJSON
}

// --- reading ---

// Read parses a scene file, choosing YAML or JSON by extension.
func Read(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scene")
	}
	sf, err := decode(data, formatOf(path))
	if err != nil {
		return nil, errors.Wrapf(err, "parse scene %s", path)
	}
	return sf, nil
}

func decode(data []byte, f format) (*SceneFile, error) {
	var sf SceneFile
	// A blank file is an empty scene in either format.
	if len(bytes.TrimSpace(data)) == 0 {
		return &sf, nil
	}
	switch f {
	case formatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// A comment-only document holds no scene.
		if err := dec.Decode(&sf); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sf); err != nil {
			return nil, err
		}
	}
	return &sf, nil
}

// --- saving ---

// Write stores sf at path in the format its extension names.
func Write(path string, sf *SceneFile) error {
	var (
		data []byte
		err  error
	)
	if formatOf(path) == formatYAML {
		data, err = yaml.Marshal(sf)
	} else {
		data, err = json.MarshalIndent(sf, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "marshal scene")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "write scene")
	}
	return nil
}
