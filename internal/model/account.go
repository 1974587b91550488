package model

// Account is a bank account owning transactions and entities.
type Account struct {
	ID          string
	Name        string
	Description string
	BankCode    string
	IBAN        string
	Color       string
}

// Entity is a counterparty/merchant inferred from transaction labels,
// scoped to one account. An entity may declare itself an alias of
// another entity in the same account; report totals are attributed to
// the terminal (principal) entity of the alias chain.
type Entity struct {
	ID          string
	AccountID   string
	Name        string // canonical extracted name, unique per account
	DisplayName string // optional human-assigned name
	CategoryID  string
	AliasOfID   string
	TagIDs      []string
}

// Label returns the display name when set, else the extracted name.
func (e Entity) Label() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Name
}

// Category is a node in the category forest. ParentID empty = root.
type Category struct {
	ID          string
	Name        string
	ParentID    string
	Description string
}

// Tag is a colored label attached to entities (many-to-many).
type Tag struct {
	ID    string
	Name  string
	Color string
}
