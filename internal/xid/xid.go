package xid

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns PREFIX_<uuid>. Version 7 ids are used so that ids minted later
// sort after earlier ones.
func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return fmt.Sprintf("%s_%s", prefix, id.String())
}
