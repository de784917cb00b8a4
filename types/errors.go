package types

import "github.com/rotisserie/eris"

// ErrComponentSchemaMismatch is returned when a component's schema does not
// match the schema it is being validated against, either a stored schema from
// a previous session or the payload of an incoming document.
var ErrComponentSchemaMismatch = eris.New("component schema mismatch")
