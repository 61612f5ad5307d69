package models

// RenamePair is one explicit rename request from a mapping file: the current
// base name and the wanted base name inside the mapping's directory.
type RenamePair struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}
