package memstore

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mdressler/bimscope/pkg/geometry"
	"github.com/mdressler/bimscope/pkg/ifc"
)

// sceneFile is the JSON scene format read by Store.Open
type sceneFile struct {
	Name          string           `json:"name"`
	GeometryReady bool             `json:"geometryReady"`
	Entities      []sceneEntity    `json:"entities"`
	Contains      map[string][]int `json:"contains"`
	Decomposes    map[string][]int `json:"decomposes"`
}

type sceneEntity struct {
	Label     int        `json:"label"`
	Kind      string     `json:"kind"`
	Name      string     `json:"name"`
	LongName  string     `json:"longName,omitempty"`
	Elevation string     `json:"elevation,omitempty"`
	Boxes     []sceneBox `json:"boxes,omitempty"`
}

type sceneBox struct {
	Origin [3]float64 `json:"origin"`
	Size   [3]float64 `json:"size"`
}

func parseKind(s string) (ifc.Kind, error) {
	switch s {
	case "storey":
		return ifc.KindStorey, nil
	case "space":
		return ifc.KindSpace, nil
	case "product", "":
		return ifc.KindProduct, nil
	default:
		return 0, fmt.Errorf("unknown entity kind %q", s)
	}
}

// Store opens JSON scene files as in-memory models
type Store struct{}

// Open reads the scene file at path into a Model
func (Store) Open(path string) (ifc.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ifc.NotFoundError{What: "file", Name: path}
		}
		return nil, &ifc.IOError{Op: "read", Path: path, Err: err}
	}

	var scene sceneFile
	if err := json.Unmarshal(data, &scene); err != nil {
		return nil, &ifc.ParseError{Path: path, Err: err}
	}

	model := NewModel(scene.Name)
	for _, se := range scene.Entities {
		kind, err := parseKind(se.Kind)
		if err != nil {
			return nil, &ifc.ParseError{Path: path, Err: err}
		}
		boxes := make([]geometry.Box, 0, len(se.Boxes))
		for _, sb := range se.Boxes {
			boxes = append(boxes, geometry.NewBox(
				geometry.NewVector3(sb.Origin[0], sb.Origin[1], sb.Origin[2]),
				geometry.NewVector3(sb.Size[0], sb.Size[1], sb.Size[2]),
			))
		}
		model.AddEntity(ifc.Entity{
			Label:     ifc.Label(se.Label),
			Kind:      kind,
			Name:      se.Name,
			LongName:  se.LongName,
			Elevation: se.Elevation,
		}, boxes...)
	}

	addRelations := func(raw map[string][]int, add func(ifc.Label, ...ifc.Label)) error {
		for key, related := range raw {
			anchor, err := strconv.Atoi(key)
			if err != nil {
				return fmt.Errorf("bad relation anchor %q: %w", key, err)
			}
			labels := make([]ifc.Label, len(related))
			for i, l := range related {
				labels[i] = ifc.Label(l)
			}
			add(ifc.Label(anchor), labels...)
		}
		return nil
	}
	if err := addRelations(scene.Contains, model.AddContains); err != nil {
		return nil, &ifc.ParseError{Path: path, Err: err}
	}
	if err := addRelations(scene.Decomposes, model.AddDecomposes); err != nil {
		return nil, &ifc.ParseError{Path: path, Err: err}
	}

	model.SetGeometryReady(scene.GeometryReady)
	return model, nil
}
