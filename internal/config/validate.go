package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks field constraints and the cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Store.Backend == BackendMemory && c.Data.GraphPath == "" {
		return errors.New("data.graph_path is required with the memory backend")
	}
	if c.Store.Backend == BackendLibSQL && c.Store.URL == "" {
		return errors.New("store.url is required with the libsql backend")
	}
	set := 0
	for _, p := range []string{c.Data.EntityEmbeddings, c.Data.RelationEmbeddings, c.Data.EntityIDs, c.Data.RelationIDs} {
		if p != "" {
			set++
		}
	}
	if set != 0 && set != 4 {
		return fmt.Errorf("embedding files must be configured together, got %d of 4", set)
	}
	return nil
}
