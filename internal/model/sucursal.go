package model

// Sucursal is one selectable branch with its denormalized manager contact.
type Sucursal struct {
	Nombre        string `yaml:"nombre"         json:"nombre"`
	GerenteNombre string `yaml:"gerente_nombre" json:"gerente_nombre"`
	GerenteEmail  string `yaml:"gerente_email"  json:"gerente_email"`
}
