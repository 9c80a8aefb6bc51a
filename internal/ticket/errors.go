package ticket

import "fmt"

// NotFoundError reports a lookup for an entity id that does not exist in
// the loaded collections. The HTTP layer maps it to a 404.
type NotFoundError struct {
	Kind string // "ticket" or "message"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}
