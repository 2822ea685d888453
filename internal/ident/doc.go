// Package ident allocates and renumbers locally scoped identifiers and
// rewrites references after a renumbering.
//
// A local id is unique only inside one collection (the options of one
// question, the left column of one matching question, ...). Ids always form
// the contiguous sequence prefix+1..prefix+k in display order. Any change to
// a collection's membership or order is followed by Renumber, and every
// reference field pointing into that collection is passed through the
// returned Mapping. Removal is modeled as a renumber over the remaining
// elements, so the removed id is simply absent from the Mapping and every
// reference to it is dropped.
package ident
