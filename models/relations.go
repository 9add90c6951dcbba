package models

// DeletePolicy says what happens to child rows when their parent is deleted.
type DeletePolicy int

const (
	Cascade DeletePolicy = iota
	SetNull
	Restrict
)

func (p DeletePolicy) String() string {
	switch p {
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET_NULL"
	case Restrict:
		return "RESTRICT"
	}
	return "UNKNOWN"
}

// Relation is one foreign key edge: Child.ForeignKey references Parent.id.
type Relation struct {
	Parent     string
	Child      string
	ForeignKey string
	Policy     DeletePolicy
}

// Relations mirrors the constraint tags declared on the models.
var Relations = []Relation{
	{Parent: "clients", Child: "client_contacts", ForeignKey: "client_id", Policy: Cascade},
	{Parent: "clients", Child: "quotes", ForeignKey: "client_id", Policy: Restrict},
	{Parent: "clients", Child: "events", ForeignKey: "client_id", Policy: SetNull},
	{Parent: "products", Child: "documents", ForeignKey: "product_id", Policy: Cascade},
	{Parent: "products", Child: "videos", ForeignKey: "product_id", Policy: Cascade},
	{Parent: "products", Child: "quote_items", ForeignKey: "product_id", Policy: Restrict},
	{Parent: "quotes", Child: "quote_items", ForeignKey: "quote_id", Policy: Cascade},
	{Parent: "events", Child: "reminders", ForeignKey: "event_id", Policy: Cascade},
	{Parent: "users", Child: "clients", ForeignKey: "created_by_id", Policy: Restrict},
	{Parent: "users", Child: "events", ForeignKey: "created_by_id", Policy: Restrict},
}

// RelationsOf returns the edges whose parent is table.
func RelationsOf(table string) []Relation {
	var out []Relation
	for _, r := range Relations {
		if r.Parent == table {
			out = append(out, r)
		}
	}
	return out
}
