package scene

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kyokaz/quickvis-go/common"
	"github.com/kyokaz/quickvis-go/engine/driver"
	"github.com/kyokaz/quickvis-go/engine/object"
)

// sceneDoc is the YAML shape of a saved scene.
type sceneDoc struct {
	Scene   string      `yaml:"scene"`
	Objects []objectDoc `yaml:"objects"`
}

type objectDoc struct {
	ID           uint64        `yaml:"id"`
	Name         string        `yaml:"name"`
	Kind         string        `yaml:"kind"`
	Enabled      bool          `yaml:"enabled"`
	Position     [3]float32    `yaml:"position,flow"`
	Scale        [3]float32    `yaml:"scale,flow"`
	Rotation     [3]float32    `yaml:"rotation,flow"`
	HideViewport bool          `yaml:"hide_viewport"`
	HideRender   bool          `yaml:"hide_render"`
	Properties   []propertyDoc `yaml:"properties,omitempty"`
	Drivers      []driverDoc   `yaml:"drivers,omitempty"`
}

type propertyDoc struct {
	Name  string               `yaml:"name"`
	Value common.Value         `yaml:"value"`
	Meta  *common.PropertyMeta `yaml:"meta,omitempty"`
}

type driverDoc struct {
	Channel    string            `yaml:"channel"`
	Expression string            `yaml:"expression"`
	Variables  []driver.Variable `yaml:"variables"`
}

// Save serializes the scene, including custom properties and drivers, to the
// native scene file format (YAML). Driver variable targets are written by
// object name so the file survives ID reassignment.
//
// Parameters:
//   - s: the scene to serialize
//   - w: destination writer
//
// Returns:
//   - error: error if encoding fails
func Save(s Scene, w io.Writer) error {
	doc := sceneDoc{Scene: s.Name()}

	for _, obj := range s.Objects() {
		od := objectDoc{
			ID:           obj.ID(),
			Name:         obj.Name(),
			Kind:         string(obj.Kind()),
			Enabled:      obj.Enabled(),
			HideViewport: obj.HideViewport(),
			HideRender:   obj.HideRender(),
		}
		od.Position[0], od.Position[1], od.Position[2] = obj.Position()
		od.Scale[0], od.Scale[1], od.Scale[2] = obj.Scale()
		od.Rotation[0], od.Rotation[1], od.Rotation[2] = obj.Rotation()

		for _, name := range obj.PropertyNames() {
			value, _ := obj.Property(name)
			pd := propertyDoc{Name: name, Value: value}
			if meta, ok := obj.PropertyMeta(name); ok {
				metaCopy := meta
				pd.Meta = &metaCopy
			}
			od.Properties = append(od.Properties, pd)
		}

		for _, d := range obj.Drivers() {
			vars := d.Variables()
			for i := range vars {
				// Refresh the persisted target name from the live registry in
				// case the holder was renamed after the driver was created.
				if target := s.Get(vars[i].TargetID); target != nil {
					vars[i].TargetName = target.Name()
				}
			}
			od.Drivers = append(od.Drivers, driverDoc{
				Channel:    string(d.Channel()),
				Expression: d.Expression(),
				Variables:  vars,
			})
		}

		doc.Objects = append(doc.Objects, od)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("scene: encoding scene file: %w", err)
	}
	return enc.Close()
}

// Load deserializes a scene from its native file format. Objects are restored
// first, then driver variable targets are re-resolved by object name.
//
// Parameters:
//   - r: source reader
//
// Returns:
//   - Scene: the restored scene
//   - error: error if decoding fails or a driver target cannot be resolved
func Load(r io.Reader) (Scene, error) {
	var doc sceneDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("scene: decoding scene file: %w", err)
	}

	s := NewScene(doc.Scene)

	// Pass 1: restore objects and properties.
	for _, od := range doc.Objects {
		obj := object.NewObject(
			object.WithID(od.ID),
			object.WithName(od.Name),
			object.WithKind(object.Kind(od.Kind)),
			object.WithEnabled(od.Enabled),
			object.WithPosition(od.Position[0], od.Position[1], od.Position[2]),
			object.WithScale(od.Scale[0], od.Scale[1], od.Scale[2]),
			object.WithRotation(od.Rotation[0], od.Rotation[1], od.Rotation[2]),
		)
		obj.SetHideViewport(od.HideViewport)
		obj.SetHideRender(od.HideRender)
		for _, pd := range od.Properties {
			obj.SetProperty(pd.Name, pd.Value)
			if pd.Meta != nil {
				obj.SetPropertyMeta(pd.Name, *pd.Meta)
			}
		}
		s.Add(obj)
	}

	// Pass 2: restore drivers, resolving variable targets by name.
	for _, od := range doc.Objects {
		obj := s.Get(od.ID)
		if obj == nil {
			continue
		}
		for _, dd := range od.Drivers {
			options := []driver.DriverBuilderOption{
				driver.WithChannel(driver.Channel(dd.Channel)),
				driver.WithExpression(dd.Expression),
			}
			for _, v := range dd.Variables {
				target := s.GetByName(v.TargetName)
				if target == nil {
					return nil, fmt.Errorf("scene: driver on %q references unknown target %q", od.Name, v.TargetName)
				}
				v.TargetID = target.ID()
				options = append(options, driver.WithVariable(v))
			}
			d, err := driver.NewDriver(options...)
			if err != nil {
				return nil, fmt.Errorf("scene: driver on %q: %w", od.Name, err)
			}
			obj.AddDriver(d)
		}
	}

	return s, nil
}

// SaveFile serializes the scene to the given path.
//
// Parameters:
//   - s: the scene to serialize
//   - path: destination file path
//
// Returns:
//   - error: error if the file cannot be written
func SaveFile(s Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("scene: creating scene file: %w", err)
	}
	defer f.Close()
	return Save(s, f)
}

// LoadFile deserializes a scene from the given path.
//
// Parameters:
//   - path: source file path
//
// Returns:
//   - Scene: the restored scene
//   - error: error if the file cannot be read or parsed
func LoadFile(path string) (Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: opening scene file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
