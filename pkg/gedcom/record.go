package gedcom

// Kind identifies the level-0 record type.
type Kind string

const (
	KindIndividual Kind = "INDI"
	KindFamily     Kind = "FAM"
)

// Record is one level-0 GEDCOM record with its nested lines flattened.
// Scalar tags land in Fields (last write wins), CHIL/HUSB/WIFE accumulate
// into Lists in file order, and event tags (BIRT, DEAT, MARR, ...) hold a
// sub-mapping of their level 2/3 detail lines in Subs.
type Record struct {
	Xref   string
	Kind   Kind
	Fields map[string]string
	Lists  map[string][]string
	Subs   map[string]map[string]string
}

func newRecord(xref string, kind Kind) *Record {
	return &Record{
		Xref:   xref,
		Kind:   kind,
		Fields: make(map[string]string),
		Lists:  make(map[string][]string),
		Subs:   make(map[string]map[string]string),
	}
}

// Field returns the scalar value for tag, or "" when absent.
func (r *Record) Field(tag string) string {
	return r.Fields[tag]
}

// List returns the accumulated values for a list tag such as CHIL.
func (r *Record) List(tag string) []string {
	return r.Lists[tag]
}

// First returns the first accumulated value for a list tag, or "" when the
// list is empty. HUSB and WIFE accumulate into Lists the same way CHIL does.
func (r *Record) First(tag string) string {
	values := r.Lists[tag]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Sub returns the sub-mapping for an event tag, or nil when the event is
// not present.
func (r *Record) Sub(tag string) map[string]string {
	return r.Subs[tag]
}
