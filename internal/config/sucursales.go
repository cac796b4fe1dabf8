package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"snp/internal/model"

	"gopkg.in/yaml.v3"
)

type sucursalesFile struct {
	Sucursales []model.Sucursal `yaml:"sucursales"`
}

// Directorio is the read-only branch directory loaded at startup.
type Directorio struct {
	lista []model.Sucursal
	porID map[string]model.Sucursal
}

// LoadSucursales reads the branch directory YAML. A missing file yields an
// empty directory, in which case branch names are accepted without lookup.
func LoadSucursales(path string) (*Directorio, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDirectorio(nil), nil
		}
		return nil, fmt.Errorf("sucursales: read %s: %w", path, err)
	}

	var f sucursalesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("sucursales: parse %s: %w", path, err)
	}
	for i, s := range f.Sucursales {
		if strings.TrimSpace(s.Nombre) == "" {
			return nil, fmt.Errorf("sucursales: entry %d has no nombre", i)
		}
	}
	return NewDirectorio(f.Sucursales), nil
}

// NewDirectorio builds a directory from an in-memory list.
func NewDirectorio(lista []model.Sucursal) *Directorio {
	d := &Directorio{porID: make(map[string]model.Sucursal, len(lista))}
	for _, s := range lista {
		s.Nombre = strings.TrimSpace(s.Nombre)
		s.GerenteEmail = strings.TrimSpace(s.GerenteEmail)
		d.lista = append(d.lista, s)
		d.porID[strings.ToLower(s.Nombre)] = s
	}
	return d
}

// Buscar resolves a branch by name, case-insensitively.
func (d *Directorio) Buscar(nombre string) (model.Sucursal, bool) {
	s, ok := d.porID[strings.ToLower(strings.TrimSpace(nombre))]
	return s, ok
}

func (d *Directorio) Vacio() bool { return len(d.lista) == 0 }

// Listar returns the branches in file order.
func (d *Directorio) Listar() []model.Sucursal {
	out := make([]model.Sucursal, len(d.lista))
	copy(out, d.lista)
	return out
}
